package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken(secret, "go-supplychain-router", "warehouse-1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "warehouse-1", claims.Subject)
	assert.Equal(t, "go-supplychain-router", claims.Issuer)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(secret, "iss", "sub", -time.Minute)
	require.NoError(t, err)

	other, err := GenerateToken([]byte("other-secret"), "iss", "sub", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong secret", other, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(secret, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken(nil, "iss", "sub", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
