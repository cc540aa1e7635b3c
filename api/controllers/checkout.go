package controllers

import (
	"context"
	"net/http"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/api/validators"
	checkoutsvc "github.com/kapilraj10/pos-storefront/internal/checkout"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type checkoutSubmitter interface {
	Submit(ctx context.Context, sessionID, token string, input checkoutsvc.Input) (*checkoutsvc.Outcome, error)
}

type checkoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	Mobile        string `json:"mobile" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash wallet"`
}

// Checkout submits the session's cart. Cash orders confirm immediately;
// wallet orders return a payment handoff and settle on callback.
func Checkout(svc checkoutSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		token := middleware.BackendTokenFromContext(r.Context())

		outcome, err := svc.Submit(r.Context(), sessionID, token, checkoutsvc.Input{
			CustomerName:  payload.CustomerName,
			Mobile:        payload.Mobile,
			PaymentMethod: payload.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if outcome.Handoff != nil {
			status = http.StatusAccepted
		}
		responses.WriteSuccessStatus(w, status, outcome)
	}
}
