package banking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/banktech/internal/client/api"
	"github.com/iudanet/banktech/internal/client/balance"
	"github.com/iudanet/banktech/internal/crdt"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/validation"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

// memSession implements SessionReader and balance.SessionBalance
type memSession struct {
	session *models.Session
	mu      sync.Mutex
}

func (m *memSession) Session(ctx context.Context) (*models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, false
	}
	return m.session.Clone(), true
}

func (m *memSession) UpdateBalance(ctx context.Context, b decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.User != nil && m.session.User.Account != nil {
		m.session.User = m.session.User.WithBalance(b)
	}
	return nil
}

func (m *memSession) UpdateUser(ctx context.Context, user *models.UserSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.User = user.Clone()
	return nil
}

func (m *memSession) balance() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.User.Account.Balance
}

type fakeGateway struct {
	depositFn  func(pkgapi.DepositRequest) (*pkgapi.DepositResponse, error)
	transferFn func(pkgapi.TransferRequest) (*pkgapi.TransferResponse, error)
	pixFn      func(pkgapi.PixPaymentRequest) (*pkgapi.PixPaymentResponse, error)
	boletoFn   func(pkgapi.BoletoPaymentRequest) (*pkgapi.BoletoPaymentResponse, error)
	calls      int
}

func (g *fakeGateway) Deposit(ctx context.Context, req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
	g.calls++
	return g.depositFn(req)
}

func (g *fakeGateway) Transfer(ctx context.Context, req pkgapi.TransferRequest) (*pkgapi.TransferResponse, error) {
	g.calls++
	return g.transferFn(req)
}

func (g *fakeGateway) PayPix(ctx context.Context, req pkgapi.PixPaymentRequest) (*pkgapi.PixPaymentResponse, error) {
	g.calls++
	return g.pixFn(req)
}

func (g *fakeGateway) PayBoleto(ctx context.Context, req pkgapi.BoletoPaymentRequest) (*pkgapi.BoletoPaymentResponse, error) {
	g.calls++
	return g.boletoFn(req)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newEnv(gw *fakeGateway) (*Service, *memSession, *balance.Reconciler) {
	session := &memSession{session: &models.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		User: &models.UserSnapshot{
			ID:    "u-1",
			Name:  "Demo",
			Email: "demo@banktech.com",
			Account: &models.AccountSnapshot{
				ID:            "acc-1",
				AgencyNumber:  "0001",
				AccountNumber: "12345",
				Balance:       dec("5432.10"),
			},
		},
	}}
	reconciler := balance.NewReconciler(nil, session, crdt.NewLamportClockWithNodeID("test"))
	return NewService(gw, session, reconciler, nil), session, reconciler
}

func TestService_Deposit(t *testing.T) {
	t.Run("server balance is applied before success", func(t *testing.T) {
		var got pkgapi.DepositRequest
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			got = req
			return &pkgapi.DepositResponse{Balance: decPtr("5532.60")}, nil
		}}
		svc, session, reconciler := newEnv(gw)

		res, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("100.50")})
		require.NoError(t, err)

		assert.Equal(t, "0001", got.Agency)
		assert.Equal(t, "12345", got.Account)
		assert.True(t, dec("100.50").Equal(got.Amount))

		assert.True(t, dec("5532.60").Equal(res.Balance.Value))
		assert.Equal(t, models.BalanceSourceResponse, res.Balance.Source)
		assert.True(t, dec("5532.60").Equal(session.balance()), "snapshot must be updated before return")
		assert.True(t, dec("5532.60").Equal(reconciler.Display(context.Background()).Value))
	})

	t.Run("transaction response falls back to delta", func(t *testing.T) {
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			return &pkgapi.DepositResponse{Amount: decPtr("100.50"), Type: "DEPOSIT"}, nil
		}}
		svc, session, _ := newEnv(gw)

		res, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("100.50")})
		require.NoError(t, err)
		assert.Equal(t, models.BalanceSourceOptimistic, res.Balance.Source)
		assert.True(t, dec("5532.60").Equal(session.balance()))
	})

	t.Run("explicit account is kept", func(t *testing.T) {
		var got pkgapi.DepositRequest
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			got = req
			return &pkgapi.DepositResponse{}, nil
		}}
		svc, _, _ := newEnv(gw)

		_, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("1"), Agency: "0002", Account: "999"})
		require.NoError(t, err)
		assert.Equal(t, "0002", got.Agency)
		assert.Equal(t, "999", got.Account)
	})

	t.Run("deposit to another account keeps own balance", func(t *testing.T) {
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			return &pkgapi.DepositResponse{Amount: decPtr("100"), Type: "DEPOSIT"}, nil
		}}
		svc, session, reconciler := newEnv(gw)

		res, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("100"), Agency: "0001", Account: "54321"})
		require.NoError(t, err)
		assert.True(t, dec("5432.10").Equal(res.Balance.Value), res.Balance.Value.String())
		assert.True(t, dec("5432.10").Equal(session.balance()))
		assert.True(t, dec("5432.10").Equal(reconciler.Display(context.Background()).Value))
	})

	t.Run("deposit to another account takes server balance", func(t *testing.T) {
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			return &pkgapi.DepositResponse{Balance: decPtr("5432.10")}, nil
		}}
		svc, session, _ := newEnv(gw)

		res, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("100"), Agency: "0001", Account: "54321"})
		require.NoError(t, err)
		assert.Equal(t, models.BalanceSourceResponse, res.Balance.Source)
		assert.True(t, dec("5432.10").Equal(session.balance()))
	})

	t.Run("explicit own account applies delta", func(t *testing.T) {
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			return &pkgapi.DepositResponse{Amount: decPtr("100"), Type: "DEPOSIT"}, nil
		}}
		svc, session, _ := newEnv(gw)

		_, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("100"), Agency: "0001", Account: "12345"})
		require.NoError(t, err)
		assert.True(t, dec("5532.10").Equal(session.balance()))
	})

	t.Run("server error leaves balance untouched", func(t *testing.T) {
		apiErr := &api.APIError{Op: "deposit", Status: 400, Message: "limit exceeded"}
		gw := &fakeGateway{depositFn: func(req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error) {
			return nil, apiErr
		}}
		svc, session, reconciler := newEnv(gw)

		_, err := svc.Deposit(context.Background(), DepositInput{Amount: dec("100.50")})
		require.Error(t, err)
		assert.ErrorIs(t, err, apiErr)
		assert.True(t, dec("5432.10").Equal(session.balance()))
		assert.Equal(t, models.BalanceSourceSnapshot, reconciler.Display(context.Background()).Source)
	})
}

func TestService_InvalidInputNotSent(t *testing.T) {
	gw := &fakeGateway{}
	svc, _, _ := newEnv(gw)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "zero deposit",
			call: func() error {
				_, err := svc.Deposit(ctx, DepositInput{Amount: decimal.Zero})
				return err
			},
		},
		{
			name: "negative transfer",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferInput{Amount: dec("-5"), ToAccountNumber: "54321"})
				return err
			},
		},
		{
			name: "three decimal places",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferInput{Amount: dec("1.005"), ToAccountNumber: "54321"})
				return err
			},
		},
		{
			name: "transfer to own account",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferInput{Amount: dec("10"), ToAccountNumber: "12345"})
				return err
			},
		},
		{
			name: "missing recipient",
			call: func() error {
				_, err := svc.Transfer(ctx, TransferInput{Amount: dec("10")})
				return err
			},
		},
		{
			name: "bad pix key",
			call: func() error {
				_, err := svc.PayPix(ctx, PixInput{Amount: dec("10"), KeyType: pkgapi.PixKeyEmail, Key: "not-an-email"})
				return err
			},
		},
		{
			name: "short barcode",
			call: func() error {
				_, err := svc.PayBoleto(ctx, "123", dec("10"))
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, validation.IsValidationError(err), "got %v", err)
		})
	}
	assert.Zero(t, gw.calls)
}

func TestService_Transfer(t *testing.T) {
	var got pkgapi.TransferRequest
	gw := &fakeGateway{transferFn: func(req pkgapi.TransferRequest) (*pkgapi.TransferResponse, error) {
		got = req
		return &pkgapi.TransferResponse{TransactionID: "tx-1", Status: pkgapi.StatusCompleted, Amount: req.Amount}, nil
	}}
	svc, session, _ := newEnv(gw)

	res, err := svc.Transfer(context.Background(), TransferInput{Amount: dec("432.10"), ToAccountNumber: " 54321 "})
	require.NoError(t, err)

	assert.Equal(t, "12345", got.FromAccountNumber)
	assert.Equal(t, "54321", got.ToAccountNumber)
	assert.Equal(t, "tx-1", res.TransactionID)
	assert.True(t, dec("5000").Equal(session.balance()))
}

func TestService_TransferWithoutSession(t *testing.T) {
	gw := &fakeGateway{}
	svc, session, _ := newEnv(gw)
	session.session = nil

	_, err := svc.Transfer(context.Background(), TransferInput{Amount: dec("1"), ToAccountNumber: "54321"})
	assert.ErrorIs(t, err, ErrNoSession)

	session.session = &models.Session{AccessToken: "a", RefreshToken: "r", User: &models.UserSnapshot{ID: "u-1"}}
	_, err = svc.Transfer(context.Background(), TransferInput{Amount: dec("1"), ToAccountNumber: "54321"})
	assert.ErrorIs(t, err, ErrAccountUnknown)
	assert.Zero(t, gw.calls)
}

func TestService_PayPix(t *testing.T) {
	var got pkgapi.PixPaymentRequest
	gw := &fakeGateway{pixFn: func(req pkgapi.PixPaymentRequest) (*pkgapi.PixPaymentResponse, error) {
		got = req
		return &pkgapi.PixPaymentResponse{
			Balance:       decPtr("5400.00"),
			TransactionID: "tx-2",
			RecipientName: "Maria Silva",
			Status:        pkgapi.StatusCompleted,
		}, nil
	}}
	svc, session, _ := newEnv(gw)

	res, err := svc.PayPix(context.Background(), PixInput{
		Amount:  dec("32.10"),
		KeyType: pkgapi.PixKeyCPF,
		Key:     "529.982.247-25",
	})
	require.NoError(t, err)

	assert.Equal(t, "52998224725", got.PixKey)
	assert.Equal(t, "Maria Silva", res.Recipient)
	assert.True(t, dec("5400").Equal(session.balance()))
}

func TestService_PayBoleto(t *testing.T) {
	barcode := strings.Repeat("1", 47)
	var got pkgapi.BoletoPaymentRequest
	gw := &fakeGateway{boletoFn: func(req pkgapi.BoletoPaymentRequest) (*pkgapi.BoletoPaymentResponse, error) {
		got = req
		return &pkgapi.BoletoPaymentResponse{TransactionID: "tx-3", Recipient: "Energia SA", Status: pkgapi.StatusCompleted}, nil
	}}
	svc, session, _ := newEnv(gw)

	res, err := svc.PayBoleto(context.Background(), barcode[:5]+"."+barcode[5:], dec("150.00"))
	require.NoError(t, err)

	assert.Equal(t, barcode, got.Barcode)
	assert.Equal(t, "Energia SA", res.Recipient)
	assert.True(t, dec("5282.10").Equal(session.balance()))
}

func TestService_PayBoletoNetworkError(t *testing.T) {
	netErr := errors.New("connection refused")
	gw := &fakeGateway{boletoFn: func(req pkgapi.BoletoPaymentRequest) (*pkgapi.BoletoPaymentResponse, error) {
		return nil, netErr
	}}
	svc, session, _ := newEnv(gw)

	_, err := svc.PayBoleto(context.Background(), strings.Repeat("2", 44), dec("10"))
	assert.ErrorIs(t, err, netErr)
	assert.True(t, dec("5432.10").Equal(session.balance()))
}
