package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
)

const cardColumns = `id, account_id, last_four, cardholder_name, expiration_date, brand,
	type, status, credit_limit, is_virtual, created_at`

// CreateCard issues a card for the account
func (s *Storage) CreateCard(ctx context.Context, card *models.Card) error {
	var limit decimal.NullDecimal
	if card.Limit != nil {
		limit = decimal.NewNullDecimal(*card.Limit)
	}

	query := `INSERT INTO cards (` + cardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.AccountID,
		card.LastFour,
		card.CardholderName,
		card.ExpirationDate,
		card.Brand,
		card.Type,
		card.Status,
		limit,
		card.IsVirtual,
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}

	return nil
}

// ListCards returns cards of the account in issue order
func (s *Storage) ListCards(ctx context.Context, accountID string) ([]*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE account_id = ? ORDER BY created_at, rowid`
	return s.queryCards(ctx, query, accountID)
}

// GetCard retrieves a card owned by the account
func (s *Storage) GetCard(ctx context.Context, accountID, cardID string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE account_id = ? AND id = ?`

	cards, err := s.queryCards(ctx, query, accountID, cardID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, storage.ErrCardNotFound
	}

	return cards[0], nil
}

// UpdateCardStatus changes card status
func (s *Storage) UpdateCardStatus(ctx context.Context, accountID, cardID, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET status = ? WHERE account_id = ? AND id = ?`, status, accountID, cardID)
	if err != nil {
		return fmt.Errorf("failed to update card status: %w", err)
	}

	return expectAffected(result, storage.ErrCardNotFound)
}

func (s *Storage) queryCards(ctx context.Context, query string, args ...any) ([]*models.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cards []*models.Card
	for rows.Next() {
		card := &models.Card{}
		var limit decimal.NullDecimal
		if err := rows.Scan(
			&card.ID,
			&card.AccountID,
			&card.LastFour,
			&card.CardholderName,
			&card.ExpirationDate,
			&card.Brand,
			&card.Type,
			&card.Status,
			&limit,
			&card.IsVirtual,
			&card.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if limit.Valid {
			card.Limit = &limit.Decimal
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return cards, nil
}
