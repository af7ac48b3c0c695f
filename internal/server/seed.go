package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/crypto"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/handlers"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/pkg/api"
)

// Учетные данные демо пользователя
const (
	DemoEmail    = "demo@banktech.com"
	DemoPassword = "BankTech@123"
	DemoAccount  = "12345"
	DemoBalance  = "5432.10"
)

// seedCustomer описание клиента, который создается при первом запуске
type seedCustomer struct {
	name    string
	email   string
	cpf     string
	phone   string
	account string
	balance string
	pixType api.PixKeyType
	pixKey  string
	card    bool
}

var seedCustomers = []seedCustomer{
	{
		name:    "Usuário Demo",
		email:   DemoEmail,
		cpf:     "11144477735",
		phone:   "11987654321",
		account: DemoAccount,
		balance: DemoBalance,
		pixType: api.PixKeyEmail,
		pixKey:  DemoEmail,
		card:    true,
	},
	{
		name:    "Maria Silva",
		email:   "maria@banktech.com",
		cpf:     "52998224725",
		phone:   "21912345678",
		account: "54321",
		balance: "1500.00",
		pixType: api.PixKeyCPF,
		pixKey:  "52998224725",
	},
}

// seedStore хранилища, в которые пишет seed
type seedStore interface {
	storage.UserStorage
	storage.AccountStorage
	storage.PixKeyStorage
	storage.CardStorage
}

// Seed создает демо клиентов. Уже существующие пропускаются,
// поэтому повторный запуск на той же базе ничего не меняет.
func Seed(ctx context.Context, store seedStore, logger *slog.Logger) error {
	hash, err := crypto.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	for _, c := range seedCustomers {
		_, err := store.GetUserByEmail(ctx, c.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("failed to check %s: %w", c.email, err)
		}

		if err := seedOne(ctx, store, c, hash); err != nil {
			return fmt.Errorf("failed to seed %s: %w", c.email, err)
		}
		logger.InfoContext(ctx, "seeded customer",
			slog.String("email", c.email),
			slog.String("account", c.account))
	}
	return nil
}

func seedOne(ctx context.Context, store seedStore, c seedCustomer, passwordHash string) error {
	now := time.Now().UTC()

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         c.name,
		Email:        c.email,
		CPF:          c.cpf,
		Phone:        c.phone,
		Role:         handlers.RoleCustomer,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}

	account := &models.Account{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		AgencyNumber:  handlers.DefaultAgency,
		AccountNumber: c.account,
		Balance:       decimal.RequireFromString(c.balance),
		Status:        "ACTIVE",
		CreatedAt:     now,
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		return err
	}

	if c.pixKey != "" {
		err := store.CreatePixKey(ctx, &models.PixKey{
			ID:        uuid.NewString(),
			AccountID: account.ID,
			KeyType:   string(c.pixType),
			KeyValue:  c.pixKey,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}

	if c.card {
		err := store.CreateCard(ctx, &models.Card{
			ID:             uuid.NewString(),
			AccountID:      account.ID,
			LastFour:       "4321",
			CardholderName: "USUARIO DEMO",
			ExpirationDate: now.AddDate(5, 0, 0).Format("01/06"),
			Brand:          "VISA",
			Type:           string(api.CardDebit),
			Status:         string(api.CardActive),
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
