package store

import "errors"

// ErrInvalidStatus is returned when SetStatus is asked to transition a
// finding to something other than one of the four defined statuses.
var ErrInvalidStatus = errors.New("store: invalid status")
