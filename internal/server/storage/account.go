package storage

import (
	"context"
	"time"

	"github.com/iudanet/banktech/internal/models"
)

// AccountStorage хранит счета и журнал движений по ним
type AccountStorage interface {
	// CreateAccount returns ErrAccountAlreadyExists if number or owner is taken
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccountByUserID returns ErrAccountNotFound if user has no account
	GetAccountByUserID(ctx context.Context, userID string) (*models.Account, error)

	// GetAccountByID returns ErrAccountNotFound for unknown id
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)

	// GetAccountByNumber returns ErrAccountNotFound for unknown number
	GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error)

	// ApplyEntries атомарно проводит записи: меняет балансы счетов
	// и сохраняет записи в журнал. Если дебет уводит баланс в минус,
	// ничего не проводится и возвращается ErrInsufficientFunds.
	ApplyEntries(ctx context.Context, entries ...*models.LedgerEntry) error

	// ListEntries возвращает последние записи счета, новые первыми.
	// limit <= 0 означает без ограничения.
	ListEntries(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error)

	// ListEntriesSince возвращает записи начиная с since, старые первыми
	ListEntriesSince(ctx context.Context, accountID string, since time.Time) ([]*models.LedgerEntry, error)

	// GetEntry returns ErrEntryNotFound if entry doesn't belong to account
	GetEntry(ctx context.Context, accountID, entryID string) (*models.LedgerEntry, error)
}
