package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewTokenCipher(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "valid key", key: make([]byte, 32), wantErr: false},
		{name: "short key", key: make([]byte, 16), wantErr: true},
		{name: "nil key", key: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewTokenCipher(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestTokenCipher_SealOpen(t *testing.T) {
	c, err := NewTokenCipher(testKey(t))
	require.NoError(t, err)

	tokens := []string{
		"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1c2VyLTEifQ.sig",
		"short",
		"refresh/token+with=symbols",
	}

	for _, token := range tokens {
		sealed, err := c.Seal(token)
		require.NoError(t, err)
		assert.NotEqual(t, token, sealed)

		opened, err := c.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, token, opened)
	}
}

func TestTokenCipher_SealUsesRandomNonce(t *testing.T) {
	c, err := NewTokenCipher(testKey(t))
	require.NoError(t, err)

	a, err := c.Seal("same")
	require.NoError(t, err)
	b, err := c.Seal("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenCipher_SealEmpty(t *testing.T) {
	c, err := NewTokenCipher(testKey(t))
	require.NoError(t, err)

	_, err = c.Seal("")
	assert.ErrorContains(t, err, "plaintext cannot be empty")
}

func TestTokenCipher_OpenErrors(t *testing.T) {
	c, err := NewTokenCipher(testKey(t))
	require.NoError(t, err)

	other, err := NewTokenCipher(testKey(t))
	require.NoError(t, err)
	sealedByOther, err := other.Seal("token")
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "not base64", input: "%%%", errMsg: "failed to decode base64"},
		{name: "too short", input: "AAAA", errMsg: "encrypted data too short"},
		{name: "wrong key", input: sealedByOther, errMsg: "authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Open(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
