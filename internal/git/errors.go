package git

import "errors"

// ErrNotRepository is returned when no enclosing git repository is found.
var ErrNotRepository = errors.New("source folder is not a git repository")
