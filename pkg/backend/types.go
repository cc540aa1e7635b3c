package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the canonical category shape exposed to the rest of the service.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Item is the canonical catalog item shape. Stock is advisory only; the
// backend remains the source of truth at order submission.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"category_id,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Description string          `json:"description,omitempty"`
}

// OrderLine is one item plus quantity within an order.
type OrderLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderRecord is the backend-owned order entity, read-only from this service.
type OrderRecord struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name"`
	Mobile        string          `json:"mobile"`
	Lines         []OrderLine     `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Order statuses the backend reports.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusReady      = "READY"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// RevenueStats arrives pre-aggregated from the backend and is never
// recomputed here.
type RevenueStats struct {
	Today      decimal.Decimal `json:"today"`
	Last7Days  decimal.Decimal `json:"last_7_days"`
	Last15Days decimal.Decimal `json:"last_15_days"`
	Month      decimal.Decimal `json:"month"`
	Total      decimal.Decimal `json:"total"`
	OrderCount int             `json:"order_count"`
}

// DashboardSummary is the authenticated landing payload.
type DashboardSummary struct {
	UserName    string `json:"user_name"`
	Role        string `json:"role"`
	ItemCount   int    `json:"item_count"`
	OrderCount  int    `json:"order_count"`
	RecentOrder string `json:"recent_order,omitempty"`
}

// LoginParams carries storefront credentials to the backend.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the backend session grant: an opaque bearer token plus
// the caller's role string.
type LoginResult struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	UserName string `json:"user_name,omitempty"`
}

// RegisterParams creates a new storefront account.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// OrderRequest submits a new order.
type OrderRequest struct {
	CustomerName  string      `json:"customer_name"`
	Mobile        string      `json:"mobile"`
	Lines         []OrderLine `json:"lines"`
	Subtotal      string      `json:"subtotal"`
	Tax           string      `json:"tax"`
	GrandTotal    string      `json:"grand_total"`
	PaymentMethod string      `json:"payment_method"`
	TransactionID string      `json:"transaction_id,omitempty"`
}

// Upload carries multipart form passthrough for admin category/item writes.
type Upload struct {
	Fields   map[string]string
	FileName string
	File     []byte
}
