package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/kapilraj10/pos-storefront/pkg/config"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("backend base url is required")
	errLoggerRequired  = errors.New("backend logger is required")
)

// Client consumes the remote POS backend over REST. All persistence,
// authentication, and business rules live there; this client renders its
// responses into canonical types and maps failures to domain errors.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient validates configuration and builds the gateway client.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}, nil
}

// Auth operations. Tokens are opaque to this client; the backend decides
// what they mean.

func (c *Client) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", "", params, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, params RegisterParams) error {
	return c.do(ctx, http.MethodPost, "/register", "", params, nil, http.StatusCreated, http.StatusOK)
}

func (c *Client) RequestOTP(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/register/request-otp", "", payload, nil, http.StatusOK)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	payload := map[string]string{"email": email, "otp": otp}
	return c.do(ctx, http.MethodPost, "/register/verify-otp", "", payload, nil, http.StatusOK)
}

// Catalog operations.

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var raw []rawCategory
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &raw, http.StatusOK); err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(raw))
	for _, entry := range raw {
		category, err := entry.normalize()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed category payload")
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (c *Client) Items(ctx context.Context) ([]Item, error) {
	var raw []rawItem
	if err := c.do(ctx, http.MethodGet, "/items", "", nil, &raw, http.StatusOK); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		item, err := entry.normalize()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed item payload")
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, upload Upload) error {
	return c.doMultipart(ctx, http.MethodPost, "/admin/categories", token, upload, http.StatusCreated, http.StatusOK)
}

func (c *Client) DeleteCategory(ctx context.Context, token, categoryID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/categories/"+url.PathEscape(categoryID), token, nil, nil, http.StatusOK, http.StatusNoContent)
}

func (c *Client) CreateItem(ctx context.Context, token string, upload Upload) error {
	return c.doMultipart(ctx, http.MethodPost, "/admin/items", token, upload, http.StatusCreated, http.StatusOK)
}

func (c *Client) UpdateItem(ctx context.Context, token, itemID string, upload Upload) error {
	return c.doMultipart(ctx, http.MethodPut, "/admin/items/"+url.PathEscape(itemID), token, upload, http.StatusOK)
}

func (c *Client) DeleteItem(ctx context.Context, token, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/items/"+url.PathEscape(itemID), token, nil, nil, http.StatusOK, http.StatusNoContent)
}

func (c *Client) PurchaseItem(ctx context.Context, itemID string, quantity int) error {
	payload := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPost, "/items/"+url.PathEscape(itemID)+"/purchase", "", payload, nil, http.StatusOK)
}

// Order operations.

// CreateOrder submits an order and expects 201 Created. Anything else is
// surfaced as an error and the caller's cart is left alone.
func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (*OrderRecord, error) {
	var raw rawOrder
	if err := c.do(ctx, http.MethodPost, "/orders", token, req, &raw, http.StatusCreated); err != nil {
		return nil, err
	}
	record, err := raw.normalize()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order payload")
	}
	return &record, nil
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]OrderRecord, error) {
	var raw []rawOrder
	if err := c.do(ctx, http.MethodGet, "/orders/my-orders", token, nil, &raw, http.StatusOK); err != nil {
		return nil, err
	}
	records, err := normalizeOrders(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order payload")
	}
	return records, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]OrderRecord, error) {
	var raw []rawOrder
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &raw, http.StatusOK); err != nil {
		return nil, err
	}
	records, err := normalizeOrders(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed order payload")
	}
	return records, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID, status string) error {
	payload := map[string]string{"status": status}
	return c.do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/status", token, payload, nil, http.StatusOK)
}

func (c *Client) DeleteOrder(ctx context.Context, token, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(orderID), token, nil, nil, http.StatusOK, http.StatusNoContent)
}

func (c *Client) RevenueStats(ctx context.Context, token string) (*RevenueStats, error) {
	var stats RevenueStats
	if err := c.do(ctx, http.MethodGet, "/orders/stats/revenue", token, nil, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Dashboard(ctx context.Context, token string) (*DashboardSummary, error) {
	var summary DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/dashboard", token, nil, &summary, http.StatusOK); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Ping verifies the backend is reachable. Used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/categories", "", nil, nil, http.StatusOK)
}

func (c *Client) do(ctx context.Context, method, path, token string, payload, out any, accepted ...int) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, method, path, out, accepted)
}

func (c *Client) doMultipart(ctx context.Context, method, path, token string, upload Upload, accepted ...int) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, value := range upload.Fields {
		if err := writer.WriteField(field, value); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode multipart field")
		}
	}
	if len(upload.File) > 0 {
		part, err := writer.CreateFormFile("image", upload.FileName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode multipart file")
		}
		if _, err := part.Write(upload.File); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode multipart file")
		}
	}
	if err := writer.Close(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, method, path, nil, accepted)
}

func (c *Client) send(req *http.Request, method, path string, out any, accepted []int) error {
	ctx := req.Context()
	c.log(ctx, "request", method, path, 0)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(ctx, "backend request failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	c.log(ctx, "response", method, path, resp.StatusCode)

	if !statusAccepted(resp.StatusCode, accepted) {
		return c.errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}

func statusAccepted(status int, accepted []int) bool {
	for _, want := range accepted {
		if status == want {
			return true
		}
	}
	return false
}

// errorFromResponse maps a non-2xx backend reply onto a domain error,
// preferring whichever message field the backend chose to use.
func (c *Client) errorFromResponse(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &payload)

	message := firstNonEmpty(payload.Message, payload.Error, payload.Detail)
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return pkgerrors.New(pkgerrors.FromStatus(resp.StatusCode), message)
}

func (c *Client) log(ctx context.Context, phase, method, path string, status int) {
	if c == nil || c.logger == nil {
		return
	}
	fields := map[string]any{
		"upstream": "backend",
		"phase":    phase,
		"method":   method,
		"path":     path,
	}
	if status != 0 {
		fields["status"] = status
	}
	c.logger.Info(c.logger.WithFields(ctx, fields), "backend "+phase)
}
