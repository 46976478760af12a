package setup

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Guliveer/dsbautostart/internal/config"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    InstallMode
		wantErr bool
	}{
		{"system", ModeSystem, false},
		{"user", ModeUser, false},
		{"invalid", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConfigPath(t *testing.T) {
	if p := ConfigPath(ModeUser, "/home/u/.config"); p == "" || p == ConfigPath(ModeSystem, "/home/u/.config") {
		t.Errorf("ConfigPath(ModeUser) = %q, want a per-user path", p)
	}
	if p := ConfigPath(ModeSystem, ""); p == "" {
		t.Error("ConfigPath(ModeSystem) should not be empty")
	}
}

func TestCheckElevation_UserMode(t *testing.T) {
	if err := CheckElevation(ModeUser); err != nil {
		t.Errorf("CheckElevation(ModeUser) = %v, want nil", err)
	}
}

func TestRun_UserMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("user config lives below LOCALAPPDATA")
	}
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvDesktop, "")
	t.Setenv(config.EnvShell, "")
	home := t.TempDir()

	// Terminal comes from the flag; shell keeps its default.
	in := strings.NewReader("XFCE\n\ny\n")
	var out bytes.Buffer
	path, err := Run("test", home, Options{Mode: "user", Terminal: "st -e"}, in, &out)
	if err != nil {
		t.Fatal(err)
	}
	if dir := filepath.Dir(filepath.Dir(path)); dir != home {
		t.Errorf("config written to %q, want below %q", path, home)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Desktop.Current != "XFCE" {
		t.Errorf("Desktop = %q, want XFCE", cfg.Desktop.Current)
	}
	if cfg.Run.Terminal != "st -e" {
		t.Errorf("Terminal = %q, want flag value", cfg.Run.Terminal)
	}
	if cfg.Run.Shell != "/bin/sh" {
		t.Errorf("Shell = %q, want default", cfg.Run.Shell)
	}
	if !cfg.Run.SkipRunning {
		t.Error("SkipRunning was not enabled")
	}

	// A second run offers the stored values as defaults.
	out.Reset()
	if _, err := Run("test", home, Options{Mode: "user"}, strings.NewReader("\n\n\n\n"), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[XFCE]") || !strings.Contains(out.String(), "Updating") {
		t.Errorf("stored values not offered:\n%s", out.String())
	}
	if cfg, _ = config.Load(path); cfg.Run.Terminal != "st -e" || !cfg.Run.SkipRunning {
		t.Errorf("second run changed settings: %+v", cfg.Run)
	}
}

func TestRun_InvalidChoice(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run("test", t.TempDir(), Options{}, strings.NewReader("3\n"), &out); err == nil {
		t.Error("expected error for an invalid scope choice")
	}
}
