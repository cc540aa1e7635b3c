package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/internal/payments"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type paymentReconciler interface {
	Reconcile(ctx context.Context, sessionID, token, pidx string) payments.Result
}

type snapshotLoader interface {
	Load(ctx context.Context, sessionID string) (*payments.PendingOrder, error)
}

// PaymentCallback is the wallet provider's return leg. The pidx query
// parameter is the only trusted input; everything else is re-read from
// the provider via lookup.
func PaymentCallback(reconciler paymentReconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		token := middleware.BackendTokenFromContext(r.Context())
		pidx := strings.TrimSpace(r.URL.Query().Get("pidx"))

		result := reconciler.Reconcile(r.Context(), sessionID, token, pidx)
		responses.WriteSuccess(w, result)
	}
}

// PaymentRecheck re-runs reconciliation for a payment that came back
// pending, using the pidx saved in the pending-order snapshot.
func PaymentRecheck(reconciler paymentReconciler, snapshots snapshotLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		token := middleware.BackendTokenFromContext(r.Context())

		snapshot, err := snapshots.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := reconciler.Reconcile(r.Context(), sessionID, token, snapshot.Pidx)
		responses.WriteSuccess(w, result)
	}
}
