package repository

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a write violates the users email
	// unique constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)
