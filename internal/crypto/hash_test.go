package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_CheckPassword(t *testing.T) {
	hash, err := HashPassword("BankTech@123")
	require.NoError(t, err)
	assert.NotEqual(t, "BankTech@123", hash)

	assert.NoError(t, CheckPassword(hash, "BankTech@123"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong-password"), ErrPasswordMismatch)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	err := CheckPassword("", "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
