package api

import "time"

// Notification представляет уведомление пользователя
type Notification struct {
	CreatedAt time.Time        `json:"createdAt"`
	ID        string           `json:"id"`
	UserID    string           `json:"userId,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	ActionURL string           `json:"actionUrl,omitempty"`
	IsRead    bool             `json:"isRead"`
}

// NotificationCategories подписки по категориям
type NotificationCategories struct {
	Transactions bool `json:"transactions"`
	Security     bool `json:"security"`
	Marketing    bool `json:"marketing"`
	Updates      bool `json:"updates"`
}

// NotificationPreferences каналы и категории доставки уведомлений
type NotificationPreferences struct {
	Categories NotificationCategories `json:"categories"`
	Email      bool                   `json:"email"`
	Push       bool                   `json:"push"`
	SMS        bool                   `json:"sms"`
}

// UnreadCountResponse представляет ответ GET /notifications/unread-count
type UnreadCountResponse struct {
	Count int `json:"count"`
}
