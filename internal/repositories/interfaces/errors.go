package interfaces

import "errors"

// ErrNotFound is returned (wrapped) by repositories when a lookup matches
// no document. Callers test with errors.Is; any other repository error is
// an infrastructure failure and must not be masked as absence.
var ErrNotFound = errors.New("not found")
