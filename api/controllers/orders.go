package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/api/validators"
	"github.com/kapilraj10/pos-storefront/internal/orders"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type orderReader interface {
	MyOrders(ctx context.Context, token string) ([]backend.OrderRecord, error)
	Dashboard(ctx context.Context, token string) (*backend.DashboardSummary, error)
}

type orderAdminClient interface {
	ListOrders(ctx context.Context, token string) ([]backend.OrderRecord, error)
	UpdateOrderStatus(ctx context.Context, token, orderID, status string) error
	DeleteOrder(ctx context.Context, token, orderID string) error
	RevenueStats(ctx context.Context, token string) (*backend.RevenueStats, error)
}

// MyOrders lists the signed-in customer's order history.
func MyOrders(client orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BackendTokenFromContext(r.Context())
		records, err := client.MyOrders(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// Dashboard serves the authenticated landing summary.
func Dashboard(client orderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BackendTokenFromContext(r.Context())
		summary, err := client.Dashboard(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// maxOrderRows caps how many filtered rows one response carries.
const maxOrderRows = 1000

// AdminListOrders bulk-fetches all orders and applies the table filters
// in-process. The backend endpoint has no filter parameters. An optional
// limit query parameter truncates the filtered result (0 means all).
func AdminListOrders(client orderAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := orders.ParsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxOrderRows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters := orders.Filters{
			Period:        period,
			Status:        r.URL.Query().Get("status"),
			PaymentMethod: r.URL.Query().Get("payment_method"),
			Query:         r.URL.Query().Get("q"),
		}

		token := middleware.BackendTokenFromContext(r.Context())
		records, err := client.ListOrders(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filtered := filters.Apply(time.Now(), records)
		if limit > 0 && len(filtered) > limit {
			filtered = filtered[:limit]
		}
		responses.WriteSuccess(w, filtered)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING READY DELIVERED COMPLETED CANCELLED"`
}

func AdminUpdateOrderStatus(client orderAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.UpdateOrderStatus(r.Context(), token, chi.URLParam(r, "orderId"), payload.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": payload.Status})
	}
}

func AdminDeleteOrder(client orderAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.DeleteOrder(r.Context(), token, chi.URLParam(r, "orderId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminRevenueStats passes through the pre-aggregated revenue figures.
func AdminRevenueStats(client orderAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BackendTokenFromContext(r.Context())
		stats, err := client.RevenueStats(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
