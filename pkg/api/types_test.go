package api

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionType_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TransactionType
		wantErr bool
	}{
		{name: "deposit", input: `"DEPOSIT"`, want: TransactionDeposit},
		{name: "card payment", input: `"CARD_PAYMENT"`, want: TransactionCardPayment},
		{name: "unknown value", input: `"REFUND"`, wantErr: true},
		{name: "lower case", input: `"pix"`, wantErr: true},
		{name: "not a string", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TransactionType
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransaction_UnknownStatusRejected(t *testing.T) {
	body := `{"id":"t1","type":"PIX","amount":10,"status":"REVERSED","createdAt":"2025-01-02T10:00:00Z"}`
	var tx Transaction
	err := json.Unmarshal([]byte(body), &tx)
	assert.Error(t, err)
}

func TestTransaction_Direction(t *testing.T) {
	tests := []struct {
		name   string
		tx     Transaction
		want   Direction
		signed string
	}{
		{
			name:   "deposit is credit",
			tx:     Transaction{Type: TransactionDeposit, Amount: decimal.RequireFromString("100.50")},
			want:   DirectionCredit,
			signed: "100.5",
		},
		{
			name:   "outgoing transfer is debit",
			tx:     Transaction{Type: TransactionTransfer, Amount: decimal.RequireFromString("20"), Recipient: &Party{Name: "Ana"}},
			want:   DirectionDebit,
			signed: "-20",
		},
		{
			name:   "incoming pix is credit",
			tx:     Transaction{Type: TransactionPix, Amount: decimal.RequireFromString("15"), Sender: &Party{Name: "Bruno"}},
			want:   DirectionCredit,
			signed: "15",
		},
		{
			name:   "negative amount from server keeps magnitude",
			tx:     Transaction{Type: TransactionWithdrawal, Amount: decimal.RequireFromString("-30")},
			want:   DirectionDebit,
			signed: "-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tx.Direction())
			assert.Equal(t, tt.signed, tt.tx.SignedAmount().String())
			assert.False(t, tt.tx.Magnitude().IsNegative())
		})
	}
}

func TestRegisterResponse_UnmarshalJSON(t *testing.T) {
	t.Run("login shape", func(t *testing.T) {
		body := `{"accessToken":"a","refreshToken":"r","expiresIn":900,"user":{"id":"u1","name":"Demo","email":"demo@banktech.com"}}`
		var resp RegisterResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		assert.True(t, resp.HasTokens())
		assert.Equal(t, "a", resp.BearerToken())
		require.NotNil(t, resp.User)
		assert.Equal(t, "u1", resp.User.ID)
	})

	t.Run("short login shape", func(t *testing.T) {
		body := `{"token":"t","user":{"id":"u1","name":"Demo","email":"demo@banktech.com"}}`
		var resp RegisterResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		assert.Equal(t, "t", resp.BearerToken())
	})

	t.Run("bare user", func(t *testing.T) {
		body := `{"id":"u2","name":"Nova","email":"nova@banktech.com"}`
		var resp RegisterResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		assert.False(t, resp.HasTokens())
		require.NotNil(t, resp.User)
		assert.Equal(t, "nova@banktech.com", resp.User.Email)
	})
}

func TestDepositRequest_AmountIsNumber(t *testing.T) {
	req := DepositRequest{Agency: "0001", Account: "12345", Amount: decimal.RequireFromString("100.50")}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"agency":"0001","account":"12345","amount":100.5}`, string(data))
}
