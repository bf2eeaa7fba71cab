package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/handlers/userctx"
	"github.com/avelichko/contactkeeper/internal/models"
)

type fakeResolver struct {
	user models.User
}

func (f *fakeResolver) ResolveUser(_ context.Context, access string) (models.User, error) {
	if access != "valid-token" {
		return models.User{}, apperrors.ErrInvalidToken
	}
	return f.user, nil
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"plain", "Bearer abc", "abc", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"no header", "", "", false},
		{"wrong scheme", "Basic abc", "", false},
		{"scheme only", "Bearer ", "", false},
		{"no space", "Bearerabc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, ok := BearerToken(r)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	user := models.User{ID: uuid.New(), Email: "poppy@example.com"}

	var seen models.User
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = userctx.FromContext(r.Context())
	})

	handler := AuthMiddleware(&fakeResolver{user: user})(next)

	t.Run("valid token puts user into context", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer valid-token")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.True(t, called)
		assert.Equal(t, user.ID, seen.ID)
	})

	t.Run("bad token", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer garbage")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no header", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
