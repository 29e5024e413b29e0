package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/debtor-registry/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, exp, err := tm.GenerateToken("user-123", domain.SubjectTypeUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, exp.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.SubjectID)
	require.Equal(t, domain.SubjectTypeUser, claims.Subject)
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	other := NewTokenManager("different-secret", 60)

	token, _, err := tm.GenerateToken("user-123", domain.SubjectTypeOperator)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	_, err := tm.ParseToken("not-a-token")
	require.Error(t, err)
}
