package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avelichko/contactkeeper/internal/handlers/render"
	"github.com/avelichko/contactkeeper/internal/handlers/userctx"
	"github.com/avelichko/contactkeeper/internal/models"
)

type UserResolver interface {
	// Turn a bearer access token into the user it belongs to
	ResolveUser(ctx context.Context, access string) (models.User, error)
}

// BearerToken extracts the credentials part of an Authorization: Bearer header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func AuthMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
				return
			}

			user, err := resolver.ResolveUser(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
