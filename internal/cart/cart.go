package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// TaxRate is the fixed tax applied to every cart subtotal.
var TaxRate = decimal.RequireFromString("0.13")

// Line is one distinct catalog item plus its requested quantity.
type Line struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	// Stock is the last known backend figure, advisory only. The backend
	// stays the source of truth at order submission.
	Stock int
}

// Totals are derived values, recomputed on every call and never stored.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Cart holds the line selection for one checkout session. Mutations are
// synchronous: a change is visible to the next read. Nothing is persisted;
// carts die with the process.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// AddLine merges the item into the cart: an existing line with the same id
// gets its quantity incremented, otherwise a new line is appended. No stock
// check happens here.
func (c *Cart) AddLine(line Line, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == line.ItemID {
			c.lines[i].Quantity += quantity
			return
		}
	}
	line.Quantity = quantity
	c.lines = append(c.lines, line)
}

// RemoveLine deletes the line entirely regardless of quantity.
func (c *Cart) RemoveLine(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(itemID)
}

// SetQuantity replaces the line's quantity. A value of zero or below
// removes the line; quantities never drop below one.
func (c *Cart) SetQuantity(itemID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(itemID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart. Called after successful order placement or an
// explicit reset.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the current selection in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Totals recomputes subtotal, tax, and grand total over the current lines.
// Full precision is retained; rounding happens only at display time.
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}
}

func (c *Cart) removeLocked(itemID string) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}
