package service

import "errors"

var (
	// ErrInvalidInput rejects create calls with empty content or
	// non-positive limits.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPasteNotFound covers absent ids, expired pastes and exhausted
	// pastes alike; callers cannot tell which case they hit.
	ErrPasteNotFound = errors.New("paste not found")

	// ErrStoreUnavailable marks connectivity or protocol failures talking
	// to the key-value store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
