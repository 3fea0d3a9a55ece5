package scoutrepo

import "errors"

var (
	// ErrNotFound indicates the requested scout does not exist.
	ErrNotFound = errors.New("scout not found")

	// ErrAlreadyExists indicates a scout already exists with the provided ID.
	ErrAlreadyExists = errors.New("scout already exists")
)
