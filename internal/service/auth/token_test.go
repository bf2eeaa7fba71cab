package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/contactkeeper/internal/apperrors"
)

func TestNewTokenManager(t *testing.T) {
	t.Run("requires secret key", func(t *testing.T) {
		_, err := NewTokenManager(TokenConfig{})

		require.Error(t, err)
	})

	t.Run("rejects unknown alg", func(t *testing.T) {
		_, err := NewTokenManager(TokenConfig{SecretKey: "secret", Alg: "ROT13"})

		require.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		m, err := NewTokenManager(TokenConfig{SecretKey: "secret"})

		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, m.accessTTL)
		assert.Equal(t, 7*24*time.Hour, m.refreshTTL)
		assert.Equal(t, 7*24*time.Hour, m.verifyTTL)
	})
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m, err := NewTokenManager(TokenConfig{SecretKey: "secret"})
	require.NoError(t, err)

	t.Run("roundtrip for every scope", func(t *testing.T) {
		for _, scope := range []Scope{ScopeAccess, ScopeRefresh, ScopeVerify} {
			t.Run(string(scope), func(t *testing.T) {
				issued, err := m.Issue("user@example.com", scope)
				require.NoError(t, err)
				require.NotEmpty(t, issued.Value)
				require.True(t, issued.ExpiresAt.After(time.Now()))

				subject, err := m.Parse(issued.Value, scope)

				require.NoError(t, err)
				assert.Equal(t, "user@example.com", subject)
			})
		}
	})

	t.Run("scope mismatch rejected", func(t *testing.T) {
		issued, err := m.Issue("user@example.com", ScopeRefresh)
		require.NoError(t, err)

		_, err = m.Parse(issued.Value, ScopeAccess)

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		short, err := NewTokenManager(TokenConfig{SecretKey: "secret", AccessTTL: -time.Minute})
		require.NoError(t, err)

		issued, err := short.Issue("user@example.com", ScopeAccess)
		require.NoError(t, err)

		_, err = m.Parse(issued.Value, ScopeAccess)

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("token signed with other key rejected", func(t *testing.T) {
		other, err := NewTokenManager(TokenConfig{SecretKey: "other-secret"})
		require.NoError(t, err)

		issued, err := other.Issue("user@example.com", ScopeAccess)
		require.NoError(t, err)

		_, err = m.Parse(issued.Value, ScopeAccess)

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := m.Parse("not.a.jwt", ScopeAccess)

		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestTokenManager_IssuePair(t *testing.T) {
	m, err := NewTokenManager(TokenConfig{SecretKey: "secret"})
	require.NoError(t, err)

	pair, err := m.IssuePair("user@example.com")
	require.NoError(t, err)

	subject, err := m.Parse(pair.Access.Value, ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)

	subject, err = m.Parse(pair.Refresh.Value, ScopeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)

	assert.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt), "refresh token must outlive access token")
}
