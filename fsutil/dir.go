// Package fsutil carries the file system helpers used when laying out a tenant store's on-disk state.
package fsutil

import (
	"os"
)

// DefaultDirMode is the mode directories are created with when the caller does not provide one.
const DefaultDirMode = 0o755

// DirExists returns a boolean indicating whether a directory at the provided path exists.
func DirExists(path string) (bool, error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, ignoreINE(err)
	}

	if !stats.IsDir() {
		return false, ErrNotDir
	}

	return true, nil
}

// Mkdir creates a directory at the provided path along with any missing parents; a directory which already exists is
// left untouched, its mode included.
//
// NOTE: If a zero value file mode is supplied, the default will be used.
func Mkdir(path string, mode os.FileMode) error {
	if mode == 0 {
		mode = DefaultDirMode
	}

	exists, err := DirExists(path)
	if err != nil || exists {
		return err
	}

	err = os.MkdirAll(path, mode)
	if err != nil {
		return err
	}

	// The created mode may not be exactly what was provided due to the umask, update the permissions to be sure
	return os.Chmod(path, mode)
}

// ignoreINE ignores any "is not exists" errors, converting them into the <nil> errors.
func ignoreINE(err error) error {
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
