// Package cart implements the customer shopping cart: line management with a
// hard per-line quantity ceiling, a total that is always recomputed from the
// lines, and durable persistence per browsing session.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/dkpi/kefir-shop/internal/catalog"
)

// MaxQuantity is the hard per-line quantity ceiling enforced everywhere.
const MaxQuantity = 3

// Line is one (product, variant) entry in the cart. Name, Size, and Price are
// denormalized snapshots taken at add time.
type Line struct {
	ProductID string
	VariantID string
	Name      string
	Size      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns Price * Quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of lines. Insertion order is preserved for
// display; it does not affect the total. At most one line exists per
// (ProductID, VariantID) pair.
//
// Cart is not safe for concurrent use; each browsing session owns exactly one
// writer.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Restore returns a cart populated with previously persisted lines.
// Quantities are clamped into [1, MaxQuantity] so stale data from an older
// persistence shape can never violate the ceiling.
func Restore(lines []Line) *Cart {
	c := &Cart{lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if l.Quantity > MaxQuantity {
			l.Quantity = MaxQuantity
		}
		if i := c.find(l.ProductID, l.VariantID); i >= 0 {
			continue // keep the first line for a duplicated pair
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) find(productID, variantID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// AddItem merges qty units of the given variant into the cart. An existing
// line is incremented up to MaxQuantity; otherwise a new line is appended
// with quantity min(qty, MaxQuantity). Calls with qty < 1 are ignored.
func (c *Cart) AddItem(p *catalog.Product, v *catalog.Variant, qty int) {
	if qty < 1 {
		return
	}
	if i := c.find(p.ID, v.ID); i >= 0 {
		c.lines[i].Quantity = min(c.lines[i].Quantity+qty, MaxQuantity)
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		VariantID: v.ID,
		Name:      p.Name,
		Size:      v.Size,
		Price:     v.Price,
		Quantity:  min(qty, MaxQuantity),
	})
}

// DecrementOrRemove implements the "-" stepper contract: quantity > 1 is
// decremented by one, quantity == 1 deletes the line. Unknown pairs are a
// no-op. It reports whether the cart changed.
func (c *Cart) DecrementOrRemove(productID, variantID string) bool {
	i := c.find(productID, variantID)
	if i < 0 {
		return false
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return true
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// RemoveEntirely implements the explicit "remove" contract: the whole line is
// deleted regardless of quantity. It reports whether the cart changed.
func (c *Cart) RemoveEntirely(productID, variantID string) bool {
	i := c.find(productID, variantID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// UpdateQuantity sets a line's quantity directly. Values above MaxQuantity or
// below 1 are rejected as a no-op (use RemoveEntirely to drop a line). It
// reports whether the cart changed.
func (c *Cart) UpdateQuantity(productID, variantID string, newQty int) bool {
	if newQty > MaxQuantity || newQty < 1 {
		return false
	}
	i := c.find(productID, variantID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = newQty
	return true
}

// IsMaxQuantityReached reports whether the line for the given pair is at or
// above MaxQuantity. Absent pairs are never at the ceiling.
func (c *Cart) IsMaxQuantityReached(productID, variantID string) bool {
	i := c.find(productID, variantID)
	return i >= 0 && c.lines[i].Quantity >= MaxQuantity
}

// GetQuantity returns the current quantity for the given pair, 0 when absent.
func (c *Cart) GetQuantity(productID, variantID string) int {
	i := c.find(productID, variantID)
	if i < 0 {
		return 0
	}
	return c.lines[i].Quantity
}

// Clear empties all lines.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a snapshot of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Subtotal returns the sum of line subtotals. It is recomputed on every call;
// the total is never stored.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range c.lines {
		sum = sum.Add(c.lines[i].Subtotal())
	}
	return sum
}
