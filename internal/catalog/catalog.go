package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product or variant does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Product represents a catalog item available for purchase. Products are
// immutable once loaded.
type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Variants    []Variant
}

// Variant is a purchasable size/price option of a Product.
type Variant struct {
	ID    string
	Size  string
	Price decimal.Decimal
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetVariant(ctx context.Context, productID, variantID string) (*Product, *Variant, error)
}
