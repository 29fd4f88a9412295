package domain

import "errors"

var (
	// ErrStoreUnavailable is returned by a TaskRepository that is failing fast
	// instead of contacting the backing store.
	ErrStoreUnavailable = errors.New("task store unavailable")
)
