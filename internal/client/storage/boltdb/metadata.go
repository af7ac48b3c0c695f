package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/banktech/internal/client/storage"
)

var (
	keyNodeID    = []byte("node_id")
	keyStoreSalt = []byte("store_salt")
)

// Compile-time check that Storage implements MetadataStorage
var _ storage.MetadataStorage = (*Storage)(nil)

// GetNodeID returns the device node ID
// Returns empty string if it was never saved
func (s *Storage) GetNodeID(ctx context.Context) (string, error) {
	value, err := s.getMetadata(keyNodeID)
	if err != nil {
		return "", fmt.Errorf("failed to get node id: %w", err)
	}
	return string(value), nil
}

// SaveNodeID saves the device node ID
func (s *Storage) SaveNodeID(ctx context.Context, nodeID string) error {
	if nodeID == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	return s.putMetadata(keyNodeID, []byte(nodeID))
}

// GetStoreSalt returns the at-rest encryption salt
// Returns nil if it was never saved
func (s *Storage) GetStoreSalt(ctx context.Context) ([]byte, error) {
	value, err := s.getMetadata(keyStoreSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to get store salt: %w", err)
	}
	return value, nil
}

// SaveStoreSalt saves the at-rest encryption salt
func (s *Storage) SaveStoreSalt(ctx context.Context, salt []byte) error {
	if len(salt) == 0 {
		return fmt.Errorf("salt cannot be empty")
	}
	return s.putMetadata(keyStoreSalt, salt)
}

func (s *Storage) getMetadata(key []byte) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Копируем, так как данные bbolt живут только внутри транзакции
		if raw := bucket.Get(key); raw != nil {
			value = make([]byte, len(raw))
			copy(value, raw)
		}
		return nil
	})

	return value, mapClosed(err)
}

func (s *Storage) putMetadata(key, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		if err := bucket.Put(key, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		return nil
	})
	return mapClosed(err)
}
