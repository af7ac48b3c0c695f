package models

import "time"

// User представляет пользователя на стороне dev сервера
type User struct {
	CreatedAt        time.Time  `json:"created_at"`         // время создания
	LastLogin        *time.Time `json:"last_login"`         // время последнего входа
	ID               string     `json:"id"`                 // UUID пользователя
	Name             string     `json:"name"`               // имя
	Email            string     `json:"email"`              // уникальный email
	CPF              string     `json:"cpf"`                // только цифры
	Phone            string     `json:"phone"`              // только цифры
	Role             string     `json:"role"`               // customer или admin
	PasswordHash     string     `json:"password_hash"`      // bcrypt хеш пароля
	TOTPSecret       string     `json:"totp_secret"`        // base32 секрет TOTP
	TwoFactorEnabled bool       `json:"two_factor_enabled"` // вход требует код
}

// RefreshToken представляет refresh token пользователя
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`      // случайный token (base64url)
	UserID    string    `json:"user_id"`    // ID пользователя
}

// PasswordReset одноразовый token восстановления пароля
type PasswordReset struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
}
