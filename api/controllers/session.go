package controllers

import (
	"context"
	"net/http"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/internal/session"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type guestStarter interface {
	StartGuest(ctx context.Context) (*session.Session, error)
}

type sessionRevoker interface {
	Revoke(ctx context.Context, sessionID string) error
}

type sessionResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// StartSession issues an anonymous session so a visitor can carry a cart
// before logging in.
func StartSession(manager guestStarter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := manager.StartGuest(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{Token: sess.Token, Role: sess.Role})
	}
}

// EndSession revokes the current session record.
func EndSession(manager sessionRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		if err := manager.Revoke(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ended"})
	}
}
