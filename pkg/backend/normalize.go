package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The backend's serializers are not consistent about field names: the same
// concept arrives as id/itemId/_id, name/itemName/title, and so on depending
// on which endpoint produced it. Everything is mapped to the canonical types
// here, once, at the gateway boundary.

// flexString unmarshals a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

type rawCategory struct {
	ID       flexString `json:"id"`
	CatID    flexString `json:"categoryId"`
	MongoID  flexString `json:"_id"`
	Name     string     `json:"name"`
	CatName  string     `json:"categoryName"`
	Title    string     `json:"title"`
	ImageURL string     `json:"imageUrl"`
	Image    string     `json:"image"`
}

func (r rawCategory) normalize() (Category, error) {
	id := firstNonEmpty(string(r.ID), string(r.CatID), string(r.MongoID))
	if id == "" {
		return Category{}, fmt.Errorf("category without id")
	}
	return Category{
		ID:       id,
		Name:     firstNonEmpty(r.Name, r.CatName, r.Title),
		ImageURL: firstNonEmpty(r.ImageURL, r.Image),
	}, nil
}

type rawItem struct {
	ID          flexString  `json:"id"`
	ItemID      flexString  `json:"itemId"`
	MongoID     flexString  `json:"_id"`
	Name        string      `json:"name"`
	ItemName    string      `json:"itemName"`
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	UnitPrice   json.Number `json:"unitPrice"`
	Stock       *int        `json:"stock"`
	Quantity    *int        `json:"quantity"`
	CategoryID  flexString  `json:"categoryId"`
	Category    flexString  `json:"category"`
	ImageURL    string      `json:"imageUrl"`
	Image       string      `json:"image"`
	Description string      `json:"description"`
}

func (r rawItem) normalize() (Item, error) {
	id := firstNonEmpty(string(r.ID), string(r.ItemID), string(r.MongoID))
	if id == "" {
		return Item{}, fmt.Errorf("item without id")
	}
	price, err := parseAmount(firstNonEmpty(r.Price.String(), r.UnitPrice.String()))
	if err != nil {
		return Item{}, fmt.Errorf("item %s: %w", id, err)
	}
	stock := 0
	if r.Stock != nil {
		stock = *r.Stock
	} else if r.Quantity != nil {
		stock = *r.Quantity
	}
	return Item{
		ID:          id,
		Name:        firstNonEmpty(r.Name, r.ItemName, r.Title),
		Price:       price,
		Stock:       stock,
		CategoryID:  firstNonEmpty(string(r.CategoryID), string(r.Category)),
		ImageURL:    firstNonEmpty(r.ImageURL, r.Image),
		Description: r.Description,
	}, nil
}

type rawOrderLine struct {
	ItemID    flexString  `json:"itemId"`
	ID        flexString  `json:"id"`
	MongoID   flexString  `json:"_id"`
	Name      string      `json:"name"`
	ItemName  string      `json:"itemName"`
	UnitPrice json.Number `json:"unitPrice"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
}

type rawOrder struct {
	ID            flexString     `json:"id"`
	OrderID       flexString     `json:"orderId"`
	MongoID       flexString     `json:"_id"`
	CustomerName  string         `json:"customerName"`
	Customer      string         `json:"customer"`
	Name          string         `json:"name"`
	Mobile        flexString     `json:"mobile"`
	Phone         flexString     `json:"phone"`
	Items         []rawOrderLine `json:"items"`
	Lines         []rawOrderLine `json:"lines"`
	Subtotal      json.Number    `json:"subtotal"`
	Tax           json.Number    `json:"tax"`
	GrandTotal    json.Number    `json:"grandTotal"`
	Total         json.Number    `json:"total"`
	PaymentMethod string         `json:"paymentMethod"`
	PaymentMode   string         `json:"paymentMode"`
	Status        string         `json:"status"`
	CreatedAt     string         `json:"createdAt"`
	OrderDate     string         `json:"orderDate"`
}

func (r rawOrder) normalize() (OrderRecord, error) {
	id := firstNonEmpty(string(r.ID), string(r.OrderID), string(r.MongoID))
	if id == "" {
		return OrderRecord{}, fmt.Errorf("order without id")
	}

	rawLines := r.Items
	if len(rawLines) == 0 {
		rawLines = r.Lines
	}
	lines := make([]OrderLine, 0, len(rawLines))
	for _, line := range rawLines {
		price, err := parseAmount(firstNonEmpty(line.UnitPrice.String(), line.Price.String()))
		if err != nil {
			return OrderRecord{}, fmt.Errorf("order %s line: %w", id, err)
		}
		lines = append(lines, OrderLine{
			ItemID:    firstNonEmpty(string(line.ItemID), string(line.ID), string(line.MongoID)),
			Name:      firstNonEmpty(line.Name, line.ItemName),
			UnitPrice: price,
			Quantity:  line.Quantity,
		})
	}

	subtotal, err := parseAmount(r.Subtotal.String())
	if err != nil {
		return OrderRecord{}, fmt.Errorf("order %s subtotal: %w", id, err)
	}
	tax, err := parseAmount(r.Tax.String())
	if err != nil {
		return OrderRecord{}, fmt.Errorf("order %s tax: %w", id, err)
	}
	grand, err := parseAmount(firstNonEmpty(r.GrandTotal.String(), r.Total.String()))
	if err != nil {
		return OrderRecord{}, fmt.Errorf("order %s total: %w", id, err)
	}

	createdAt := parseTimestamp(firstNonEmpty(r.CreatedAt, r.OrderDate))

	return OrderRecord{
		ID:            id,
		CustomerName:  firstNonEmpty(r.CustomerName, r.Customer, r.Name),
		Mobile:        firstNonEmpty(string(r.Mobile), string(r.Phone)),
		Lines:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		GrandTotal:    grand,
		PaymentMethod: strings.ToLower(firstNonEmpty(r.PaymentMethod, r.PaymentMode)),
		Status:        strings.ToUpper(strings.TrimSpace(r.Status)),
		CreatedAt:     createdAt,
	}, nil
}

func normalizeOrders(raw []rawOrder) ([]OrderRecord, error) {
	records := make([]OrderRecord, 0, len(raw))
	for _, entry := range raw {
		record, err := entry.normalize()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return value, nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
