package fsutil

import "errors"

// ErrNotDir is returned by 'DirExists' if a file exists at the provided path.
var ErrNotDir = errors.New("not a directory")
