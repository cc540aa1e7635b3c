package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kapilraj10/pos-storefront/pkg/config"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

// Lookup statuses the provider reports. Anything outside this set is
// treated as a terminal failure.
const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
)

var (
	errBaseURLRequired   = errors.New("wallet base url is required")
	errSecretKeyRequired = errors.New("wallet secret key is required")
	errLoggerRequired    = errors.New("wallet logger is required")
)

// Client talks to the external wallet provider: redirect initiation plus
// the one-shot status lookup on return. The payment reference (pidx) is
// opaque; it is never generated or validated here.
type Client struct {
	baseURL   string
	secretKey string
	returnURL string
	http      *http.Client
	logger    *logger.Logger
}

// NewClient validates credentials and builds the provider client.
func NewClient(cfg config.WalletConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	return &Client{
		baseURL:   base,
		secretKey: secret,
		returnURL: strings.TrimSpace(cfg.ReturnURL),
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logg,
	}, nil
}

// InitiateParams starts one payment attempt. Amount is the grand total in
// the provider's minor unit.
type InitiateParams struct {
	AmountMinor   int64  `json:"amount"`
	PurchaseID    string `json:"purchase_order_id"`
	PurchaseName  string `json:"purchase_order_name"`
	ReturnURL     string `json:"return_url"`
	CustomerName  string `json:"-"`
	CustomerPhone string `json:"-"`
}

// InitiateResult carries the redirect target and the payment reference.
type InitiateResult struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
}

// LookupResult is the provider's terse status echo for one payment attempt.
type LookupResult struct {
	Pidx          string          `json:"pidx"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// Initiate requests a payment URL for the given order. The caller is
// expected to navigate the user there and resume via Lookup on return.
func (c *Client) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	if params.ReturnURL == "" {
		params.ReturnURL = c.returnURL
	}

	payload := map[string]any{
		"amount":              params.AmountMinor,
		"purchase_order_id":   params.PurchaseID,
		"purchase_order_name": params.PurchaseName,
		"return_url":          params.ReturnURL,
		"customer_info": map[string]string{
			"name":  params.CustomerName,
			"phone": params.CustomerPhone,
		},
	}

	c.log(ctx, "request", "initiate", map[string]any{
		"purchase_order_id": params.PurchaseID,
		"amount":            params.AmountMinor,
	})

	var result InitiateResult
	if err := c.post(ctx, "/epayment/initiate/", payload, &result); err != nil {
		c.log(ctx, "error", "initiate", map[string]any{"error": err.Error()})
		return nil, err
	}
	if result.Pidx == "" || result.PaymentURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "wallet initiation returned no payment reference")
	}

	c.log(ctx, "response", "initiate", map[string]any{"pidx": result.Pidx})
	return &result, nil
}

// Lookup fetches the outcome of one payment attempt by its reference.
// A single one-shot call: no polling happens here.
func (c *Client) Lookup(ctx context.Context, pidx string) (*LookupResult, error) {
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}

	c.log(ctx, "request", "lookup", map[string]any{"pidx": pidx})

	var result LookupResult
	if err := c.post(ctx, "/epayment/lookup/", map[string]string{"pidx": pidx}, &result); err != nil {
		c.log(ctx, "error", "lookup", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "lookup", map[string]any{"pidx": result.Pidx, "payment_status": result.Status})
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode wallet request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build wallet request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "wallet unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		_ = json.Unmarshal(raw, &detail)

		message := detail.Detail
		if message == "" {
			message = detail.Message
		}
		if message == "" {
			message = "wallet request rejected"
		}
		return pkgerrors.New(pkgerrors.FromStatus(resp.StatusCode), message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode wallet response")
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"upstream":  "wallet",
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, "wallet "+op, errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, "wallet "+phase)
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"key", "secret", "token", "phone", "email"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
