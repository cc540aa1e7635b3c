package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kapilraj10/pos-storefront/pkg/config"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.WalletConfig{
		BaseURL:   server.URL,
		SecretKey: "key-123",
		ReturnURL: "https://shop.example.com/payment/callback",
		Timeout:   5 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test"})

	_, err := NewClient(config.WalletConfig{SecretKey: "k"}, logg)
	require.ErrorIs(t, err, errBaseURLRequired)

	_, err = NewClient(config.WalletConfig{BaseURL: "http://w"}, logg)
	require.ErrorIs(t, err, errSecretKeyRequired)

	_, err = NewClient(config.WalletConfig{BaseURL: "http://w", SecretKey: "k"}, nil)
	require.ErrorIs(t, err, errLoggerRequired)
}

func TestInitiateSendsKeyAuthAndReturnURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epayment/initiate/", r.URL.Path)
		require.Equal(t, "Key key-123", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "https://shop.example.com/payment/callback", payload["return_url"])
		require.Equal(t, "ord-1", payload["purchase_order_id"])

		json.NewEncoder(w).Encode(InitiateResult{Pidx: "px-1", PaymentURL: "https://wallet.example.com/pay/px-1"})
	}))

	result, err := client.Initiate(context.Background(), InitiateParams{
		AmountMinor:  28250,
		PurchaseID:   "ord-1",
		PurchaseName: "POS order",
	})
	require.NoError(t, err)
	require.Equal(t, "px-1", result.Pidx)
	require.Equal(t, "https://wallet.example.com/pay/px-1", result.PaymentURL)
}

func TestInitiateRejectsEmptyReference(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(InitiateResult{})
	}))

	_, err := client.Initiate(context.Background(), InitiateParams{PurchaseID: "ord-1"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestLookupReturnsStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epayment/lookup/", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "px-1", payload["pidx"])

		w.Write([]byte(`{"pidx":"px-1","status":"Completed","transaction_id":"T1","total_amount":28250}`))
	}))

	result, err := client.Lookup(context.Background(), "px-1")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, "T1", result.TransactionID)
}

func TestLookupRequiresReference(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected")
	}))

	_, err := client.Lookup(context.Background(), "  ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestLookupMapsProviderRejection(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not found."}`))
	}))

	_, err := client.Lookup(context.Background(), "px-unknown")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	require.Equal(t, "Not found.", typed.Message())
}
