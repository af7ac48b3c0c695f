package storage

import "context"

// MetadataStorage defines interface for storing per-device client metadata.
// Unlike the session, metadata survives logout.
type MetadataStorage interface {
	// GetNodeID returns the device node ID used to order balance versions.
	// Returns empty string if it was never saved.
	GetNodeID(ctx context.Context) (string, error)

	// SaveNodeID saves the device node ID
	SaveNodeID(ctx context.Context, nodeID string) error

	// GetStoreSalt returns the salt for deriving the at-rest encryption key.
	// Returns nil if it was never saved.
	GetStoreSalt(ctx context.Context) ([]byte, error)

	// SaveStoreSalt saves the salt for deriving the at-rest encryption key
	SaveStoreSalt(ctx context.Context, salt []byte) error
}
