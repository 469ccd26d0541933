package repository

import "errors"

var (
	// ErrNotFound is returned when a requested resource or store doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrParse is returned when a resource exists but cannot be decoded
	ErrParse = errors.New("unreadable resource")

	// ErrPersist is returned when a store write fails; the previous state is kept
	ErrPersist = errors.New("persist failed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
