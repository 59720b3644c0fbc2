package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates a request carried missing or out-of-range values.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidState indicates the operation is not allowed in the current lifecycle state.
var ErrInvalidState = errors.New("invalid state")

// ErrNotFound indicates an unknown flock, session, crate, batch or crate type.
var ErrNotFound = errors.New("not found")

// ErrComputationUnavailable indicates a metric needs data that is not recorded yet.
var ErrComputationUnavailable = errors.New("computation unavailable")

// ErrVersionConflict indicates a session was modified by another writer since it was loaded.
var ErrVersionConflict = fmt.Errorf("%w: version conflict", ErrInvalidState)
