package directory

import "errors"

// ErrDirectory wraps a filesystem-level failure (missing file, permission
// denied, unreadable directory) encountered while loading a snapshot.
var ErrDirectory = errors.New("directory error")

// ErrNotFound is returned when a single, non-grouped artifact (one that
// must exist exactly once, e.g. the election event context) is absent.
var ErrNotFound = errors.New("artifact not found")
