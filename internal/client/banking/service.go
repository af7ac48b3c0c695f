package banking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/client/api"
	"github.com/iudanet/banktech/internal/client/balance"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/validation"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

// Gateway вызовы API, меняющие баланс
type Gateway interface {
	Deposit(ctx context.Context, req pkgapi.DepositRequest) (*pkgapi.DepositResponse, error)
	Transfer(ctx context.Context, req pkgapi.TransferRequest) (*pkgapi.TransferResponse, error)
	PayPix(ctx context.Context, req pkgapi.PixPaymentRequest) (*pkgapi.PixPaymentResponse, error)
	PayBoleto(ctx context.Context, req pkgapi.BoletoPaymentRequest) (*pkgapi.BoletoPaymentResponse, error)
}

var _ Gateway = (*api.Client)(nil)

// SessionReader чтение снимка сессии
type SessionReader interface {
	Session(ctx context.Context) (*models.Session, bool)
}

// Result результат операции
type Result struct {
	Balance       balance.View
	Amount        decimal.Decimal
	TransactionID string
	Status        pkgapi.TransactionStatus
	Recipient     string
}

// Service выполняет операции над счетом. После успешного ответа баланс
// обновляется оптимистично и сохраняется в сессию до возврата результата.
// При ошибке отображаемое состояние не меняется.
type Service struct {
	gateway    Gateway
	session    SessionReader
	reconciler *balance.Reconciler
	logger     *slog.Logger
}

// NewService создает сервис операций
func NewService(gateway Gateway, session SessionReader, reconciler *balance.Reconciler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gateway:    gateway,
		session:    session,
		reconciler: reconciler,
		logger:     logger,
	}
}

// DepositInput параметры пополнения. Пустые агентство и счет берутся из сессии.
type DepositInput struct {
	Amount      decimal.Decimal
	Agency      string
	Account     string
	Description string
}

// Deposit пополняет счет
func (s *Service) Deposit(ctx context.Context, in DepositInput) (*Result, error) {
	// 1. Проверяем ввод
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}

	own := true
	if in.Agency == "" || in.Account == "" {
		acc, err := s.ownAccount(ctx)
		if err != nil {
			return nil, err
		}
		if in.Agency == "" {
			in.Agency = acc.AgencyNumber
		}
		if in.Account == "" {
			in.Account = acc.AccountNumber
		}
	} else if acc, err := s.ownAccount(ctx); err == nil {
		own = acc.AgencyNumber == in.Agency && acc.AccountNumber == in.Account
	} else {
		own = false
	}

	// 2. Берем метку до отправки запроса
	p := s.reconciler.Begin()

	// 3. Выполняем запрос
	resp, err := s.gateway.Deposit(ctx, pkgapi.DepositRequest{
		Amount:      in.Amount,
		Agency:      in.Agency,
		Account:     in.Account,
		Description: in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("deposit failed: %w", err)
	}

	// 4. Обновляем баланс до сообщения об успехе. Пополнение чужого счета
	// не меняет свой баланс: берем только баланс из ответа, если он есть.
	var view balance.View
	if own || resp.Balance != nil {
		view = s.apply(ctx, p, resp.Balance, in.Amount)
	} else {
		view = s.reconciler.Display(ctx)
	}

	return &Result{Balance: view, Amount: in.Amount, Status: pkgapi.StatusCompleted}, nil
}

// TransferInput параметры перевода
type TransferInput struct {
	Amount          decimal.Decimal
	ToAccountNumber string
	Description     string
}

// Transfer переводит деньги со своего счета на другой
func (s *Service) Transfer(ctx context.Context, in TransferInput) (*Result, error) {
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("toAccountNumber", in.ToAccountNumber); err != nil {
		return nil, err
	}

	acc, err := s.ownAccount(ctx)
	if err != nil {
		return nil, err
	}
	if acc.AccountNumber == strings.TrimSpace(in.ToAccountNumber) {
		return nil, &validation.ValidationError{Field: "toAccountNumber", Message: "cannot transfer to the same account"}
	}

	p := s.reconciler.Begin()

	resp, err := s.gateway.Transfer(ctx, pkgapi.TransferRequest{
		Amount:            in.Amount,
		FromAccountNumber: acc.AccountNumber,
		ToAccountNumber:   strings.TrimSpace(in.ToAccountNumber),
		Description:       in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	view := s.apply(ctx, p, resp.Balance, in.Amount.Neg())

	return &Result{
		Balance:       view,
		Amount:        in.Amount,
		TransactionID: resp.TransactionID,
		Status:        resp.Status,
	}, nil
}

// PixInput параметры оплаты через PIX
type PixInput struct {
	Amount      decimal.Decimal
	KeyType     pkgapi.PixKeyType
	Key         string
	Description string
}

// PayPix отправляет платеж по ключу PIX
func (s *Service) PayPix(ctx context.Context, in PixInput) (*Result, error) {
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validation.ValidatePixKey(in.KeyType, in.Key); err != nil {
		return nil, err
	}

	key := in.Key
	if in.KeyType == pkgapi.PixKeyCPF || in.KeyType == pkgapi.PixKeyPhone {
		key = validation.Digits(key)
	}

	p := s.reconciler.Begin()

	resp, err := s.gateway.PayPix(ctx, pkgapi.PixPaymentRequest{
		Amount:      in.Amount,
		PixKey:      key,
		Description: in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("PIX payment failed: %w", err)
	}

	view := s.apply(ctx, p, resp.Balance, in.Amount.Neg())

	return &Result{
		Balance:       view,
		Amount:        in.Amount,
		TransactionID: resp.TransactionID,
		Status:        resp.Status,
		Recipient:     resp.RecipientName,
	}, nil
}

// PayBoleto оплачивает boleto
func (s *Service) PayBoleto(ctx context.Context, barcode string, amount decimal.Decimal) (*Result, error) {
	if err := validation.ValidateBarcode(barcode); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}

	p := s.reconciler.Begin()

	resp, err := s.gateway.PayBoleto(ctx, pkgapi.BoletoPaymentRequest{
		Amount:  amount,
		Barcode: validation.Digits(barcode),
	})
	if err != nil {
		return nil, fmt.Errorf("boleto payment failed: %w", err)
	}

	view := s.apply(ctx, p, resp.Balance, amount.Neg())

	return &Result{
		Balance:       view,
		Amount:        amount,
		TransactionID: resp.TransactionID,
		Status:        resp.Status,
		Recipient:     resp.Recipient,
	}, nil
}

// apply отражает успешную операцию в балансе: баланс из ответа, если сервер
// его вернул, иначе текущий баланс плюс delta. Операция уже прошла на сервере,
// поэтому ошибка сохранения только логируется.
func (s *Service) apply(ctx context.Context, p balance.Pending, serverBalance *decimal.Decimal, delta decimal.Decimal) balance.View {
	var (
		view balance.View
		err  error
	)
	if serverBalance != nil {
		view, err = s.reconciler.ApplyServerBalance(ctx, p, *serverBalance)
	} else {
		view, err = s.reconciler.ApplyDelta(ctx, p, delta)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist optimistic balance", slog.Any("error", err))
	}
	return view
}

// ownAccount возвращает счет из снимка сессии
func (s *Service) ownAccount(ctx context.Context) (*models.AccountSnapshot, error) {
	session, ok := s.session.Session(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	if session.User == nil || session.User.Account == nil {
		return nil, ErrAccountUnknown
	}
	return session.User.Account, nil
}
