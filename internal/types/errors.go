package types

import "errors"

// Sentinel errors shared across services; handlers map them to HTTP statuses.
var (
	ErrBadRequest      = errors.New("missing or invalid fields")
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrUpstream        = errors.New("upstream service unavailable")
)
