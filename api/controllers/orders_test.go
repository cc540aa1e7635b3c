package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
)

type testOrderAdmin struct {
	listFn         func(ctx context.Context, token string) ([]backend.OrderRecord, error)
	updateStatusFn func(ctx context.Context, token, orderID, status string) error
	deleteFn       func(ctx context.Context, token, orderID string) error
	revenueFn      func(ctx context.Context, token string) (*backend.RevenueStats, error)
}

func (c *testOrderAdmin) ListOrders(ctx context.Context, token string) ([]backend.OrderRecord, error) {
	return c.listFn(ctx, token)
}

func (c *testOrderAdmin) UpdateOrderStatus(ctx context.Context, token, orderID, status string) error {
	return c.updateStatusFn(ctx, token, orderID, status)
}

func (c *testOrderAdmin) DeleteOrder(ctx context.Context, token, orderID string) error {
	return c.deleteFn(ctx, token, orderID)
}

func (c *testOrderAdmin) RevenueStats(ctx context.Context, token string) (*backend.RevenueStats, error) {
	return c.revenueFn(ctx, token)
}

func adminRequest(method, target string, body any) *http.Request {
	req := sessionRequest(method, target, body)
	return req.WithContext(middleware.WithBackendToken(req.Context(), "admin-jwt"))
}

func TestAdminListOrdersAppliesFiltersInProcess(t *testing.T) {
	client := &testOrderAdmin{
		listFn: func(ctx context.Context, token string) ([]backend.OrderRecord, error) {
			require.Equal(t, "admin-jwt", token)
			return []backend.OrderRecord{
				{ID: "ord-1", CustomerName: "Ram", Status: backend.OrderStatusPending, PaymentMethod: "cash", CreatedAt: time.Now()},
				{ID: "ord-2", CustomerName: "Sita", Status: backend.OrderStatusCompleted, PaymentMethod: "wallet", CreatedAt: time.Now()},
			}, nil
		},
	}

	req := adminRequest(http.MethodGet, "/api/admin/v1/orders?status=COMPLETED&payment_method=wallet", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(client, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data []backend.OrderRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "ord-2", envelope.Data[0].ID)
}

func TestAdminListOrdersRejectsBadPeriod(t *testing.T) {
	client := &testOrderAdmin{
		listFn: func(ctx context.Context, token string) ([]backend.OrderRecord, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		},
	}

	req := adminRequest(http.MethodGet, "/api/admin/v1/orders?period=fortnight", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(client, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminListOrdersHonorsLimit(t *testing.T) {
	client := &testOrderAdmin{
		listFn: func(ctx context.Context, token string) ([]backend.OrderRecord, error) {
			return []backend.OrderRecord{
				{ID: "ord-1", CreatedAt: time.Now()},
				{ID: "ord-2", CreatedAt: time.Now()},
				{ID: "ord-3", CreatedAt: time.Now()},
			}, nil
		},
	}

	req := adminRequest(http.MethodGet, "/api/admin/v1/orders?limit=2", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(client, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data []backend.OrderRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	require.Equal(t, "ord-1", envelope.Data[0].ID)
}

func TestAdminListOrdersRejectsBadLimit(t *testing.T) {
	client := &testOrderAdmin{
		listFn: func(ctx context.Context, token string) ([]backend.OrderRecord, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		},
	}

	for _, target := range []string{
		"/api/admin/v1/orders?limit=abc",
		"/api/admin/v1/orders?limit=-1",
		"/api/admin/v1/orders?limit=99999",
	} {
		req := adminRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		AdminListOrders(client, testLogger())(resp, req)
		require.Equal(t, http.StatusBadRequest, resp.Code, target)
	}
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	var gotOrder, gotStatus string
	client := &testOrderAdmin{
		updateStatusFn: func(ctx context.Context, token, orderID, status string) error {
			gotOrder, gotStatus = orderID, status
			return nil
		},
	}

	req := adminRequest(http.MethodPatch, "/api/admin/v1/orders/ord-9/status", map[string]string{"status": "READY"})
	req = withURLParam(req, "orderId", "ord-9")
	resp := httptest.NewRecorder()
	AdminUpdateOrderStatus(client, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "ord-9", gotOrder)
	require.Equal(t, "READY", gotStatus)
}

func TestAdminUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	client := &testOrderAdmin{
		updateStatusFn: func(ctx context.Context, token, orderID, status string) error {
			t.Fatal("backend must not be called")
			return nil
		},
	}

	req := adminRequest(http.MethodPatch, "/api/admin/v1/orders/ord-9/status", map[string]string{"status": "SHIPPED"})
	req = withURLParam(req, "orderId", "ord-9")
	resp := httptest.NewRecorder()
	AdminUpdateOrderStatus(client, testLogger())(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminRevenueStatsPassthrough(t *testing.T) {
	client := &testOrderAdmin{
		revenueFn: func(ctx context.Context, token string) (*backend.RevenueStats, error) {
			return &backend.RevenueStats{OrderCount: 7}, nil
		},
	}

	req := adminRequest(http.MethodGet, "/api/admin/v1/orders/stats/revenue", nil)
	resp := httptest.NewRecorder()
	AdminRevenueStats(client, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data backend.RevenueStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, 7, envelope.Data.OrderCount)
}
