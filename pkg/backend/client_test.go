package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kapilraj10/pos-storefront/pkg/config"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

func itemPrice(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return value
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.BackendConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresLogger(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.BackendConfig{BaseURL: "http://x"}, nil)
	require.Error(t, err)
}

func TestLoginReturnsTokenAndRole(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var params LoginParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.Equal(t, "admin@example.com", params.Email)

		json.NewEncoder(w).Encode(LoginResult{Token: "tok-1", Role: "ROLE_ADMIN"})
	}))

	result, err := client.Login(context.Background(), LoginParams{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "tok-1", result.Token)
	require.Equal(t, "ROLE_ADMIN", result.Role)
}

func TestCreateOrderRequires201(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"ord-1","customerName":"Ram","items":[],"subtotal":0,"tax":0,"total":0,"status":"PENDING"}`))
	}))

	record, err := client.CreateOrder(context.Background(), "tok-1", OrderRequest{CustomerName: "Ram"})
	require.NoError(t, err)
	require.Equal(t, "ord-1", record.ID)
}

func TestCreateOrderSurfacesBackendMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"insufficient stock"}`))
	}))

	_, err := client.CreateOrder(context.Background(), "tok-1", OrderRequest{})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "insufficient stock", typed.Message())
}

func TestUnauthorizedMapsToAuthCode(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListOrders(context.Background(), "expired")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestItemsNormalizesHeterogeneousShapes(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"1","name":"Tea","price":"100","stock":5},
			{"itemId":2,"itemName":"Momo","unitPrice":180,"quantity":3}
		]`))
	}))

	items, err := client.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "2", items[1].ID)
	require.Equal(t, "Momo", items[1].Name)
	require.True(t, items[1].Price.Equal(itemPrice(t, "180")))
}

func TestCreateCategorySendsMultipart(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Drinks", r.FormValue("name"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "drinks.png", header.Filename)

		w.WriteHeader(http.StatusCreated)
	}))

	err := client.CreateCategory(context.Background(), "tok-1", Upload{
		Fields:   map[string]string{"name": "Drinks"},
		FileName: "drinks.png",
		File:     []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)
}

func TestBackendUnreachableIsDependencyError(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := client.Categories(context.Background())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
