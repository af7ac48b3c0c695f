package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment представляет вложение пользователя
type Investment struct {
	InvestmentDate time.Time       `json:"investmentDate"`
	MaturityDate   *time.Time      `json:"maturityDate,omitempty"`
	InitialAmount  decimal.Decimal `json:"initialAmount"`
	CurrentAmount  decimal.Decimal `json:"currentAmount"`
	Profitability  decimal.Decimal `json:"profitability"`
	Rate           decimal.Decimal `json:"rate"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"` // CDB, LCI, LCA, TESOURO, FUNDO, ACOES
	Risk           string          `json:"risk"`
	Status         string          `json:"status"` // active или redeemed
}

// AllocationItem доля вложений одного типа
type AllocationItem struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Type       string          `json:"type"`
}

// InvestmentSummary сводка по вложениям
type InvestmentSummary struct {
	Investments      []Investment     `json:"investments"`
	Allocation       []AllocationItem `json:"allocation"`
	TotalInvested    decimal.Decimal  `json:"totalInvested"`
	TotalCurrent     decimal.Decimal  `json:"totalCurrent"`
	TotalProfit      decimal.Decimal  `json:"totalProfit"`
	ProfitPercentage decimal.Decimal  `json:"profitPercentage"`
}

// InvestRequest представляет запрос на новое вложение
type InvestRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	Name   string          `json:"name,omitempty"`
}

// RedeemRequest представляет запрос на погашение вложения
type RedeemRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"` // nil означает полное погашение
}
