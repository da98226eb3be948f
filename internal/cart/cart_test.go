package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkpi/kefir-shop/internal/catalog"
)

func testProduct(id, name string) *catalog.Product {
	return &catalog.Product{ID: id, Name: name}
}

func testVariant(id, size, price string) *catalog.Variant {
	return &catalog.Variant{ID: id, Size: size, Price: decimal.RequireFromString(price)}
}

// checkSubtotal recomputes the expected total independently and compares it
// against Cart.Subtotal.
func checkSubtotal(t *testing.T, c *Cart) {
	t.Helper()
	want := decimal.Zero
	for _, l := range c.Lines() {
		want = want.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.True(t, want.Equal(c.Subtotal()), "subtotal %s != recomputed %s", c.Subtotal(), want)
}

func TestAddItem_MergesAndClamps(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00")

	c.AddItem(p, v, 1)
	assert.Equal(t, 1, c.GetQuantity("p1", "1l"))
	checkSubtotal(t, c)

	c.AddItem(p, v, 1)
	c.AddItem(p, v, 1)
	assert.Equal(t, 3, c.GetQuantity("p1", "1l"))

	// A fourth add stays at the ceiling and never duplicates the line.
	c.AddItem(p, v, 1)
	assert.Equal(t, 3, c.GetQuantity("p1", "1l"))
	assert.Len(t, c.Lines(), 1)
	checkSubtotal(t, c)
}

func TestAddItem_QuantitySumClampedAtMax(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("33cl", "33 cl", "4.50")

	c.AddItem(p, v, 2)
	c.AddItem(p, v, 2)
	assert.Equal(t, MaxQuantity, c.GetQuantity("p1", "33cl"))

	c.AddItem(p, v, 5)
	assert.Equal(t, MaxQuantity, c.GetQuantity("p1", "33cl"))
}

func TestAddItem_DistinctVariantsAreDistinctLines(t *testing.T) {
	c := New()
	p := testProduct("p1", "Kefir")

	c.AddItem(p, testVariant("33cl", "33 cl", "4.50"), 1)
	c.AddItem(p, testVariant("1l", "1 L", "9.00"), 1)

	assert.Len(t, c.Lines(), 2)
	checkSubtotal(t, c)
}

func TestAddItem_NonPositiveQuantityIgnored(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00")

	c.AddItem(p, v, 0)
	c.AddItem(p, v, -2)
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00")
	c.AddItem(p, v, 2)

	// Above the ceiling: no-op.
	assert.False(t, c.UpdateQuantity("p1", "1l", MaxQuantity+1))
	assert.Equal(t, 2, c.GetQuantity("p1", "1l"))

	// Zero is not a removal, it is rejected.
	assert.False(t, c.UpdateQuantity("p1", "1l", 0))
	assert.Equal(t, 2, c.GetQuantity("p1", "1l"))

	assert.True(t, c.UpdateQuantity("p1", "1l", 1))
	assert.Equal(t, 1, c.GetQuantity("p1", "1l"))
	checkSubtotal(t, c)
}

func TestDecrementOrRemove(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00")
	c.AddItem(p, v, 2)

	// Quantity > 1: decrement by exactly one, never delete.
	assert.True(t, c.DecrementOrRemove("p1", "1l"))
	assert.Equal(t, 1, c.GetQuantity("p1", "1l"))
	assert.Len(t, c.Lines(), 1)

	// Quantity == 1: the line is deleted.
	assert.True(t, c.DecrementOrRemove("p1", "1l"))
	assert.True(t, c.IsEmpty())

	assert.False(t, c.DecrementOrRemove("p1", "1l"))
}

func TestRemoveEntirely(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00")
	c.AddItem(p, v, 3)

	assert.True(t, c.RemoveEntirely("p1", "1l"))
	assert.True(t, c.IsEmpty())
	assert.False(t, c.RemoveEntirely("p1", "1l"))
}

func TestIsMaxQuantityReached(t *testing.T) {
	c := New()
	p, v := testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00")

	assert.False(t, c.IsMaxQuantityReached("p1", "1l"))

	c.AddItem(p, v, MaxQuantity)
	assert.True(t, c.IsMaxQuantityReached("p1", "1l"))
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem(testProduct("p1", "Kefir"), testVariant("1l", "1 L", "9.00"), 2)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, decimal.Zero.Equal(c.Subtotal()))
	assert.Empty(t, c.Lines())
}

func TestSubtotal_Scenario(t *testing.T) {
	c := New()
	c.AddItem(testProduct("p1", "Kefir"), testVariant("75cl", "75 cl", "7.50"), 2)
	c.AddItem(testProduct("p2", "Hibiscus"), testVariant("1l", "1 L", "12.00"), 1)

	require.True(t, decimal.RequireFromString("27.00").Equal(c.Subtotal()),
		"subtotal = %s", c.Subtotal())
}

func TestRestore_SanitizesLines(t *testing.T) {
	c := Restore([]Line{
		{ProductID: "p1", VariantID: "v1", Price: decimal.RequireFromString("5.00"), Quantity: 7},
		{ProductID: "p1", VariantID: "v1", Price: decimal.RequireFromString("5.00"), Quantity: 1},
		{ProductID: "p2", VariantID: "v1", Price: decimal.RequireFromString("3.00"), Quantity: 0},
	})

	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, MaxQuantity, c.GetQuantity("p1", "v1"))
}
