package service

import "errors"

var (
	// ErrNotFound means the referenced feed or article does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSource means a feed with the same URL is already registered.
	ErrDuplicateSource = errors.New("feed already registered")
	// ErrFeedUnreachable wraps any failure to fetch or parse a remote feed.
	ErrFeedUnreachable = errors.New("feed unreachable")
	// ErrValidation means required input was missing or malformed.
	ErrValidation = errors.New("invalid input")
)
