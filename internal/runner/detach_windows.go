//go:build windows

package runner

import "os/exec"

func detach(cmd *exec.Cmd) {}
