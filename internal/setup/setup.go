// Package setup is an interactive wizard that writes a dsbautostart
// configuration file for the current user or for the whole system.
package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Guliveer/dsbautostart/internal/config"
)

// Options holds the CLI flags passed to -setup. Empty values are asked for
// interactively.
type Options struct {
	Mode     string // "system", "user", or "" (interactive)
	Desktop  string
	Terminal string
}

// Run executes the setup wizard and returns the path of the written file.
// configHome is the user's XDG config home.
func Run(version, configHome string, opts Options, in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintf(out, "\ndsbautostart setup %s\n", version)
	fmt.Fprintln(out, strings.Repeat("─", 30))
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)

	// 1. Determine install mode
	mode, err := resolveMode(opts.Mode, reader, out)
	if err != nil {
		return "", err
	}

	// 2. Check elevation for system mode
	if err := CheckElevation(mode); err != nil {
		return "", err
	}

	// 3. Start from the existing file, if any
	path := ConfigPath(mode, configHome)
	if configExists(path) {
		fmt.Fprintf(out, "Updating %s\n\n", path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}

	// 4. Ask for the settings
	if cfg.Desktop.Current, err = resolveValue(opts.Desktop, "Desktop name (empty: $XDG_CURRENT_DESKTOP)", cfg.Desktop.Current, reader, out); err != nil {
		return "", err
	}
	if cfg.Run.Terminal, err = resolveValue(opts.Terminal, "Terminal command", cfg.Run.Terminal, reader, out); err != nil {
		return "", err
	}
	if cfg.Run.Shell, err = resolveValue("", "Shell", cfg.Run.Shell, reader, out); err != nil {
		return "", err
	}
	skip, err := resolveValue("", "Skip commands that are already running (y/n)", yesNo(cfg.Run.SkipRunning), reader, out)
	if err != nil {
		return "", err
	}
	cfg.Run.SkipRunning = strings.HasPrefix(strings.ToLower(skip), "y")

	if err := cfg.Validate(); err != nil {
		return "", err
	}

	// 5. Write config
	if err := config.WriteConfig(cfg, path); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(out, "  ✓ Written config → %s\n", path)
	return path, nil
}

// resolveMode determines the install mode from flag or interactive prompt.
func resolveMode(flagValue string, reader *bufio.Reader, out io.Writer) (InstallMode, error) {
	if flagValue != "" {
		return ParseMode(flagValue)
	}
	fmt.Fprintln(out, "Configuration scope:")
	fmt.Fprintln(out, "  [1] System (all users), requires root")
	fmt.Fprintln(out, "  [2] User (current user only)")
	fmt.Fprint(out, "> ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	switch choice {
	case "1":
		return ModeSystem, nil
	case "2":
		return ModeUser, nil
	default:
		return 0, fmt.Errorf("invalid choice %q", choice)
	}
}

// resolveValue gets a value from flag or interactive prompt.
func resolveValue(flagValue, prompt, defaultVal string, reader *bufio.Reader, out io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", prompt)
	}
	val, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return defaultVal, nil
	}
	return val, nil
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

// configExists reports whether the wizard would overwrite a file.
func configExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
