package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloparc/velo-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthService(&config.Config{
		AdminEmail:         "admin@veloparc.fr",
		AdminPasswordHash:  string(hash),
		JWTSecret:          "test-secret",
		JWTExpirationHours: 24,
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthFixture(t)

	t.Run("Success", func(t *testing.T) {
		result, err := svc.Login(ctx, "admin@veloparc.fr", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "admin@veloparc.fr", result.Email)
		assert.False(t, result.ExpiresAt.IsZero())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin@veloparc.fr", "wrong")
		require.Error(t, err)
		assert.Equal(t, "identifiants invalides", err.Error())
	})

	t.Run("Unknown Email", func(t *testing.T) {
		_, err := svc.Login(ctx, "intruder@example.com", "correct-horse")
		require.Error(t, err)
		assert.Equal(t, "identifiants invalides", err.Error())
	})
}
