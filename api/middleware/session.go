package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/internal/session"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

// SessionResolver exposes the read surface middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, tokenString string) (string, *session.Record, error)
}

// Session validates the bearer session token and seeds the request
// context with session id, role, and the backend passthrough token.
func Session(resolver SessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			sessionID, record, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSessionID(r.Context(), sessionID)
			ctx = WithRole(ctx, record.Role)
			if record.BackendToken != "" {
				ctx = WithBackendToken(ctx, record.BackendToken)
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
				ctx = logg.WithRole(ctx, record.Role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBackendToken rejects guest sessions on routes that proxy
// authenticated backend calls.
func RequireBackendToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if BackendTokenFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
