package util

import (
	"errors"
	"fmt"
	"os"
)

const (
	// the owner and peers on the host can list and read shared files
	storageDirMode = 0o755
)

// Exist reports whether dirpath exists and is a directory.
func Exist(dirpath string) bool {
	fi, err := os.Stat(dirpath)
	return err == nil && fi.IsDir()
}

// EnsureDir creates dirpath with its parents if missing and checks that the
// result is a directory.
func EnsureDir(dirpath string) error {
	if err := os.MkdirAll(dirpath, storageDirMode); err != nil {
		return err
	}
	if !Exist(dirpath) {
		return fmt.Errorf("%s: %w", dirpath, errNotDir)
	}
	return nil
}

var errNotDir = errors.New("not a directory")
