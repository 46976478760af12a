//go:build !windows

package setup

import (
	"fmt"
	"os"
)

// CheckElevation verifies the process has root privileges when needed.
// Returns nil if mode is ModeUser or if running as root.
func CheckElevation(mode InstallMode) error {
	if mode == ModeUser {
		return nil
	}
	if os.Geteuid() != 0 {
		return fmt.Errorf("writing the system-wide configuration requires root privileges\n\nRun with doas or sudo:\n  sudo %s -setup -setup-mode system", os.Args[0])
	}
	return nil
}
