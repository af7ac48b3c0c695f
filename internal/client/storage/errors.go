package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no complete session is stored
	ErrSessionNotFound = errors.New("session not found")

	// ErrCorruptSession indicates that stored session data cannot be decoded
	ErrCorruptSession = errors.New("stored session is corrupt")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
