package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address адрес пользователя
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

// Profile представляет расширенный профиль пользователя
type Profile struct {
	User
	Address       *Address         `json:"address,omitempty"`
	MonthlyIncome *decimal.Decimal `json:"monthlyIncome,omitempty"`
	Avatar        string           `json:"avatar,omitempty"`
	DateOfBirth   string           `json:"dateOfBirth,omitempty"`
	Occupation    string           `json:"occupation,omitempty"`
}

// UpdateProfileRequest представляет запрос на изменение профиля
type UpdateProfileRequest struct {
	Address    *Address `json:"address,omitempty"`
	Name       string   `json:"name,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Occupation string   `json:"occupation,omitempty"`
}

// DeviceSession активная сессия на устройстве
type DeviceSession struct {
	LastActivity time.Time `json:"lastActivity"`
	ID           string    `json:"id"`
	DeviceName   string    `json:"deviceName"`
	DeviceType   string    `json:"deviceType"`
	Browser      string    `json:"browser,omitempty"`
	OS           string    `json:"os,omitempty"`
	IPAddress    string    `json:"ipAddress"`
	Location     string    `json:"location,omitempty"`
	IsCurrent    bool      `json:"isCurrent"`
}

// SecuritySettings настройки безопасности
type SecuritySettings struct {
	TrustedDevices     []string `json:"trustedDevices"`
	SessionTimeout     int      `json:"sessionTimeout"` // минуты
	TwoFactorEnabled   bool     `json:"twoFactorEnabled"`
	BiometricEnabled   bool     `json:"biometricEnabled"`
	LoginNotifications bool     `json:"loginNotifications"`
}

// TransactionLimits лимиты операций
type TransactionLimits struct {
	DailyTransferLimit   decimal.Decimal `json:"dailyTransferLimit"`
	DailyPixLimit        decimal.Decimal `json:"dailyPixLimit"`
	DailyWithdrawalLimit decimal.Decimal `json:"dailyWithdrawalLimit"`
	MonthlyLimit         decimal.Decimal `json:"monthlyLimit"`
}

// AuditLog запись журнала действий пользователя
type AuditLog struct {
	Timestamp   time.Time `json:"timestamp"`
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress"`
	Device      string    `json:"device"`
	Status      string    `json:"status"` // success или failed
}
