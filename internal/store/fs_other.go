//go:build windows

package store

import (
	"errors"
	"io/fs"
	"os"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
