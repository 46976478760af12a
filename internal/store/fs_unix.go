//go:build !windows

package store

import (
	"errors"

	"golang.org/x/sys/unix"
)

func exists(path string) bool {
	return unix.Access(path, unix.F_OK) == nil
}

func isPermission(err error) bool {
	return errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES)
}
