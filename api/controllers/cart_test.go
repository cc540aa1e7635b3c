package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	cartsvc "github.com/kapilraj10/pos-storefront/internal/cart"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type testCatalog struct {
	itemsFn func(ctx context.Context) ([]backend.Item, error)
}

func (c *testCatalog) Items(ctx context.Context) ([]backend.Item, error) {
	if c.itemsFn != nil {
		return c.itemsFn(ctx)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func sessionRequest(method, target string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeCart(t *testing.T, resp *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var envelope struct {
		Data cartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestAddCartItemUsesCatalogPrice(t *testing.T) {
	catalog := &testCatalog{
		itemsFn: func(ctx context.Context) ([]backend.Item, error) {
			return []backend.Item{
				{ID: "itm-1", Name: "Momo", Price: decimal.RequireFromString("250"), Stock: 12},
			}, nil
		},
	}
	carts := cartsvc.NewStore()

	req := sessionRequest(http.MethodPost, "/api/v1/cart/items", map[string]any{
		"item_id":    "itm-1",
		"quantity":   1,
		"unit_price": "1",
	})
	resp := httptest.NewRecorder()

	// The unknown unit_price field must be rejected, not silently used.
	AddCartItem(carts, catalog, testLogger())(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	req = sessionRequest(http.MethodPost, "/api/v1/cart/items", map[string]any{
		"item_id":  "itm-1",
		"quantity": 1,
	})
	resp = httptest.NewRecorder()
	AddCartItem(carts, catalog, testLogger())(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	view := decodeCart(t, resp)
	require.Len(t, view.Lines, 1)
	require.Equal(t, "250", view.Lines[0].UnitPrice)
	require.Equal(t, "250", view.Subtotal)
	require.Equal(t, "32.5", view.Tax)
	require.Equal(t, "282.5", view.GrandTotal)
}

func TestAddCartItemUnknownItem(t *testing.T) {
	catalog := &testCatalog{
		itemsFn: func(ctx context.Context) ([]backend.Item, error) {
			return []backend.Item{}, nil
		},
	}

	req := sessionRequest(http.MethodPost, "/api/v1/cart/items", map[string]any{
		"item_id":  "missing",
		"quantity": 1,
	})
	resp := httptest.NewRecorder()
	AddCartItem(cartsvc.NewStore(), catalog, testLogger())(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReplaceCartSwapsSelection(t *testing.T) {
	catalog := &testCatalog{
		itemsFn: func(ctx context.Context) ([]backend.Item, error) {
			return []backend.Item{
				{ID: "itm-1", Name: "Momo", Price: decimal.RequireFromString("250")},
				{ID: "itm-2", Name: "Chowmein", Price: decimal.RequireFromString("150")},
			}, nil
		},
	}
	carts := cartsvc.NewStore()
	carts.Get("sess-1").AddLine(cartsvc.Line{ItemID: "itm-old", Name: "Old", UnitPrice: decimal.RequireFromString("10")}, 5)

	req := sessionRequest(http.MethodPost, "/api/v1/cart", map[string]any{
		"items": []map[string]any{
			{"item_id": "itm-1", "quantity": 1},
			{"item_id": "itm-2", "quantity": 2},
		},
	})
	resp := httptest.NewRecorder()
	ReplaceCart(carts, catalog, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, resp)
	require.Len(t, view.Lines, 2)
	require.Equal(t, "550", view.Subtotal)
}

func TestReplaceCartUnknownItemLeavesNothingPartial(t *testing.T) {
	catalog := &testCatalog{
		itemsFn: func(ctx context.Context) ([]backend.Item, error) {
			return []backend.Item{{ID: "itm-1", Name: "Momo", Price: decimal.RequireFromString("250")}}, nil
		},
	}
	carts := cartsvc.NewStore()
	carts.Get("sess-1").AddLine(cartsvc.Line{ItemID: "itm-old", Name: "Old", UnitPrice: decimal.RequireFromString("10")}, 1)

	req := sessionRequest(http.MethodPost, "/api/v1/cart", map[string]any{
		"items": []map[string]any{
			{"item_id": "itm-1", "quantity": 1},
			{"item_id": "missing", "quantity": 1},
		},
	})
	resp := httptest.NewRecorder()
	ReplaceCart(carts, catalog, testLogger())(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	// The existing cart is untouched on failure.
	require.Len(t, carts.Get("sess-1").Lines(), 1)
	require.Equal(t, "itm-old", carts.Get("sess-1").Lines()[0].ItemID)
}

func TestSetCartItemQuantityZeroRemovesLine(t *testing.T) {
	carts := cartsvc.NewStore()
	carts.Get("sess-1").AddLine(cartsvc.Line{ItemID: "itm-1", Name: "Momo", UnitPrice: decimal.RequireFromString("250")}, 2)

	req := sessionRequest(http.MethodPatch, "/api/v1/cart/items/itm-1", map[string]any{"quantity": 0})
	req = withURLParam(req, "itemId", "itm-1")
	resp := httptest.NewRecorder()
	SetCartItemQuantity(carts, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, resp)
	require.Empty(t, view.Lines)
	require.Equal(t, "0", view.Subtotal)
}

func TestRemoveCartItemAndClear(t *testing.T) {
	carts := cartsvc.NewStore()
	cart := carts.Get("sess-1")
	cart.AddLine(cartsvc.Line{ItemID: "itm-1", Name: "Momo", UnitPrice: decimal.RequireFromString("100")}, 1)
	cart.AddLine(cartsvc.Line{ItemID: "itm-2", Name: "Chowmein", UnitPrice: decimal.RequireFromString("150")}, 1)

	req := withURLParam(sessionRequest(http.MethodDelete, "/api/v1/cart/items/itm-1", nil), "itemId", "itm-1")
	resp := httptest.NewRecorder()
	RemoveCartItem(carts, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeCart(t, resp)
	require.Len(t, view.Lines, 1)
	require.Equal(t, "itm-2", view.Lines[0].ItemID)

	resp = httptest.NewRecorder()
	ClearCart(carts, testLogger())(resp, sessionRequest(http.MethodDelete, "/api/v1/cart", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, decodeCart(t, resp).Lines)
}

func TestGetCartIsolatedPerSession(t *testing.T) {
	carts := cartsvc.NewStore()
	carts.Get("sess-1").AddLine(cartsvc.Line{ItemID: "itm-1", Name: "Momo", UnitPrice: decimal.RequireFromString("100")}, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-2"))
	resp := httptest.NewRecorder()
	GetCart(carts, testLogger())(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, decodeCart(t, resp).Lines)
}
