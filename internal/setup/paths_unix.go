//go:build !windows

package setup

import "path/filepath"

const systemConfigPath = "/usr/local/etc/dsbautostart.yaml"

// ConfigPath returns the file the wizard writes for mode. configHome is the
// user's XDG config home.
func ConfigPath(mode InstallMode, configHome string) string {
	if mode == ModeUser {
		return filepath.Join(configHome, "dsbautostart", "config.yaml")
	}
	return systemConfigPath
}
