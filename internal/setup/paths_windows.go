//go:build windows

package setup

import (
	"os"
	"path/filepath"
)

func ConfigPath(mode InstallMode, configHome string) string {
	if mode == ModeUser {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "dsbautostart", "config.yaml")
	}
	return filepath.Join(os.Getenv("ProgramData"), "dsbautostart", "config.yaml")
}
