package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/banktech/internal/client/storage"
	"github.com/iudanet/banktech/internal/crypto"
)

// LoadNodeID возвращает идентификатор устройства или создает новый.
// NodeID переживает logout и нужен для упорядочивания версий баланса.
func LoadNodeID(ctx context.Context, meta storage.MetadataStorage) (string, error) {
	nodeID, err := meta.GetNodeID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get node ID: %w", err)
	}
	if nodeID != "" {
		return nodeID, nil
	}

	// Первый запуск на этом устройстве
	nodeID = uuid.New().String()
	if err := meta.SaveNodeID(ctx, nodeID); err != nil {
		return "", fmt.Errorf("failed to save node ID: %w", err)
	}
	return nodeID, nil
}

// LoadCipher строит шифр токенов из пароля хранилища.
// Соль создается при первом использовании и хранится в метаданных.
func LoadCipher(ctx context.Context, meta storage.MetadataStorage, passphrase string) (*crypto.TokenCipher, error) {
	salt, err := meta.GetStoreSalt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get store salt: %w", err)
	}

	if len(salt) == 0 {
		if salt, err = crypto.GenerateSalt(); err != nil {
			return nil, fmt.Errorf("failed to generate store salt: %w", err)
		}
		if err := meta.SaveStoreSalt(ctx, salt); err != nil {
			return nil, fmt.Errorf("failed to save store salt: %w", err)
		}
	}

	key, err := crypto.DeriveStoreKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}

	return crypto.NewTokenCipher(key)
}
