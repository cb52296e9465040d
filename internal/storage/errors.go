package storage

import "errors"

var (
	// ErrNotFound is returned when a resource does not exist within the
	// caller's tenant scope.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate is returned when attempting to create a resource that
	// already exists.
	ErrDuplicate = errors.New("resource already exists")
)
