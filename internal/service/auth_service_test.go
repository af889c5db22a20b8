package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-go/internal/config"
	"docqa-go/pkg/hash"
	"docqa-go/pkg/token"
)

func newAuthFixture(t *testing.T, apiKey string) (AuthService, *token.JWTManager) {
	t.Helper()
	keyHash, err := hash.HashPassword(apiKey)
	require.NoError(t, err)

	jwtManager := token.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(config.AuthConfig{APIKeyHash: keyHash}, jwtManager)
	return svc, jwtManager
}

func TestIssueToken(t *testing.T) {
	svc, jwtManager := newAuthFixture(t, "super-secret-key")

	tok, expiresAt, err := svc.IssueToken(context.Background(), "super-secret-key")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := jwtManager.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "api", claims.Subject)
}

func TestIssueToken_WrongKey(t *testing.T) {
	svc, _ := newAuthFixture(t, "super-secret-key")

	_, _, err := svc.IssueToken(context.Background(), "wrong-key")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestIssueToken_EmptyKey(t *testing.T) {
	svc, _ := newAuthFixture(t, "super-secret-key")

	_, _, err := svc.IssueToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}
