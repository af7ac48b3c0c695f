package auth

import "errors"

var (
	// ErrSessionExpired плановое обновление токена не удалось, сессия завершена
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalid2FACode сервер отклонил код второго фактора
	ErrInvalid2FACode = errors.New("invalid code")

	// ErrNotLoggedIn нет сохраненной сессии
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrIncompleteSession сервер не выдал пару access/refresh token
	ErrIncompleteSession = errors.New("server did not return both access and refresh tokens")
)
