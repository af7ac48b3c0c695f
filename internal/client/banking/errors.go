package banking

import "errors"

var (
	// ErrNoSession операция требует входа
	ErrNoSession = errors.New("not logged in")

	// ErrAccountUnknown в сессии еще нет данных счета, нужна загрузка баланса
	ErrAccountUnknown = errors.New("account details are not loaded yet")
)
