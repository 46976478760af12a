// Package main is the entry point for dsbautostart. It manages the XDG
// autostart entries of the current user: it runs them (-a), imports a plain
// command list (-c), or opens an interactive editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/dsbautostart/internal/autostart"
	"github.com/Guliveer/dsbautostart/internal/config"
	"github.com/Guliveer/dsbautostart/internal/editor"
	"github.com/Guliveer/dsbautostart/internal/importer"
	"github.com/Guliveer/dsbautostart/internal/legacy"
	"github.com/Guliveer/dsbautostart/internal/runner"
	"github.com/Guliveer/dsbautostart/internal/setup"
	"github.com/Guliveer/dsbautostart/internal/store"
	"github.com/Guliveer/dsbautostart/internal/xdg"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	runFlag     = flag.Bool("a", false, "Autostart the enabled commands, and exit")
	createFlag  = flag.Bool("c", false, "Read commands from stdin and add them to the autostart list")
	legacyFlag  = flag.Bool("legacy", false, "Operate on autostart.sh instead of desktop files")
	configPath  = flag.String("config", "", "Path to configuration file (default: search standard locations)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	desktopName = flag.String("desktop", "", "Desktop environment name (default: $XDG_CURRENT_DESKTOP)")
	showVersion = flag.Bool("version", false, "Show version and exit")
	runSetup    = flag.Bool("setup", false, "Run the configuration wizard and exit")
	setupMode   = flag.String("setup-mode", "", "Wizard scope: user or system (default: ask)")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [-legacy] [-a | -c] [options]\n", os.Args[0])
	fmt.Fprintln(out, "Without -a or -c an interactive editor is started.")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if flag.NArg() > 0 || (*runFlag && *createFlag) || (*runSetup && (*runFlag || *createFlag)) {
		usage()
		os.Exit(1)
	}

	if *showVersion {
		fmt.Printf("dsbautostart %s\n", version)
		os.Exit(0)
	}

	if *runSetup {
		home, err := xdg.NewResolver().ConfigHome()
		if err == nil {
			_, err = setup.Run(version, home, setup.Options{
				Mode:    *setupMode,
				Desktop: *desktopName,
			}, os.Stdin, os.Stdout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.LoadLayered(config.CLIOverrides{
		LogLevel: *logLevel,
		Desktop:  *desktopName,
	}, embeddedConfig, paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Debug("Starting dsbautostart",
		zap.String("version", version),
		zap.Bool("legacy", *legacyFlag))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resolver := xdg.NewResolver(
		xdg.WithSystemFallback(cfg.XDG.SystemFallback),
		xdg.WithLogger(logger),
	)

	if *legacyFlag {
		err = runLegacy(ctx, cfg, resolver, logger)
	} else {
		err = runDesktop(ctx, cfg, resolver, logger)
	}
	if err != nil {
		logger.Error("dsbautostart failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// runDesktop works on the desktop files of the autostart directories.
func runDesktop(ctx context.Context, cfg *config.Config, resolver *xdg.Resolver, logger *zap.Logger) error {
	st := store.New(resolver, logger)
	s, err := autostart.New(st,
		autostart.WithDesktop(cfg.Desktop.Current),
		autostart.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("loading autostart entries: %w", err)
	}

	switch {
	case *runFlag:
		return newRunner(cfg, logger).Run(ctx, runner.Jobs(s.Live()))
	case *createFlag:
		n, err := importer.Import(os.Stdin, importer.SessionTarget{Session: s}, logger)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return s.Save()
	default:
		return editor.New(s, os.Stdin, os.Stdout, logger).Run()
	}
}

// runLegacy works on the autostart.sh command list.
func runLegacy(ctx context.Context, cfg *config.Config, resolver *xdg.Resolver, logger *zap.Logger) error {
	home, err := resolver.ConfigHome()
	if err != nil {
		return err
	}
	f, err := legacy.Load(cfg.LegacyPath(home))
	if err != nil {
		return err
	}

	switch {
	case *runFlag:
		var jobs []runner.Job
		for _, cmd := range f.Active() {
			jobs = append(jobs, runner.Job{Exec: cmd})
		}
		return newRunner(cfg, logger).Run(ctx, jobs)
	case *createFlag:
		n, err := importer.Import(os.Stdin, importer.LegacyTarget{File: f}, logger)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return f.Save()
	default:
		// The editor works on desktop files; print the list instead.
		for _, c := range f.Commands {
			state := "on "
			if !c.Active {
				state = "off"
			}
			fmt.Printf("%s  %s\n", state, c.Exec)
		}
		return nil
	}
}

func newRunner(cfg *config.Config, logger *zap.Logger) *runner.Runner {
	return runner.New(
		runner.WithShell(cfg.Run.Shell),
		runner.WithTerminal(cfg.Run.Terminal),
		runner.WithSkipRunning(cfg.Run.SkipRunning),
		runner.WithProbeTimeout(cfg.Run.ProbeTimeout.Duration),
		runner.WithLogger(logger),
	)
}

// initLogger creates a zap logger based on the configuration.
// It writes human-readable output to stderr, leaving stdout to the editor,
// and optionally JSON to a log file.
func initLogger(cfg *config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
