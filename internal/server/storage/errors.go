package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh or reset token was not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrAccountNotFound indicates that account was not found
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists indicates that account number or owner is taken
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrInsufficientFunds indicates that a debit would make the balance negative
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrEntryNotFound indicates that ledger entry was not found
	ErrEntryNotFound = errors.New("entry not found")

	// ErrPixKeyNotFound indicates that PIX key was not found
	ErrPixKeyNotFound = errors.New("pix key not found")

	// ErrPixKeyAlreadyExists indicates that PIX key value is already registered
	ErrPixKeyAlreadyExists = errors.New("pix key already exists")

	// ErrCardNotFound indicates that card was not found
	ErrCardNotFound = errors.New("card not found")

	// ErrNotificationNotFound indicates that notification was not found
	ErrNotificationNotFound = errors.New("notification not found")
)
