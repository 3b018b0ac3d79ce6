package repository

import "errors"

var (
	// ErrNotFound indicates the referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID indicates a malformed document identifier.
	ErrInvalidID = errors.New("invalid id")
)
