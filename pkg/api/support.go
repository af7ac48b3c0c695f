package api

import "time"

// SupportMessage сообщение в обращении
type SupportMessage struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	Sender    string    `json:"sender"` // user или agent
	Message   string    `json:"message"`
}

// SupportTicket обращение в поддержку
type SupportTicket struct {
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Messages  []SupportMessage `json:"messages"`
	ID        string           `json:"id"`
	Subject   string           `json:"subject"`
	Category  string           `json:"category"` // technical, financial, card, security, other
	Status    string           `json:"status"`   // open, in_progress, resolved, closed
	Priority  string           `json:"priority"` // low, medium, high
}

// CreateTicketRequest представляет запрос на создание обращения
type CreateTicketRequest struct {
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Priority string `json:"priority,omitempty"`
}

// TicketMessageRequest представляет новое сообщение в обращении
type TicketMessageRequest struct {
	Message string `json:"message"`
}

// FAQItem вопрос из базы знаний
type FAQItem struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Helpful    int    `json:"helpful"`
	NotHelpful int    `json:"notHelpful"`
}
