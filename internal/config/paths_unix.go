//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	var paths []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "dsbautostart", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dsbautostart", "config.yaml"))
	}
	return append(paths,
		"/usr/local/etc/dsbautostart.yaml",
		"/etc/dsbautostart.yaml",
	)
}
