package services

import "github.com/pkg/errors"

var (
	// ErrInvalidContent is returned for empty or over-length text.
	ErrInvalidContent = errors.New("invalid content")
	// ErrNotFound covers missing rows and ownership mismatches alike.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCursor is returned when a timeline cursor cannot be parsed.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrSelfFollow is returned when an account tries to follow itself.
	ErrSelfFollow = errors.New("cannot follow yourself")
)
