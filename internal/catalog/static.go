package catalog

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var _ Repository = (*Static)(nil)

// Static is a Repository backed by an in-memory product list, loaded once
// from JSON at startup and never mutated afterwards.
type Static struct {
	products []Product
	byID     map[string]*Product
}

type variantJSON struct {
	ID    string          `json:"id"`
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

type productJSON struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	Variants    []variantJSON `json:"variants"`
}

// NewStatic parses the given catalog JSON and builds the lookup index.
// Negative variant prices and duplicate product IDs are rejected so a bad
// catalog file fails at startup rather than mid-request.
func NewStatic(data []byte) (*Static, error) {
	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse catalog JSON")
	}

	s := &Static{
		products: make([]Product, 0, len(raw)),
		byID:     make(map[string]*Product, len(raw)),
	}
	for _, pj := range raw {
		if pj.ID == "" {
			return nil, errors.New("product with empty id")
		}
		if _, dup := s.byID[pj.ID]; dup {
			return nil, errors.Errorf("duplicate product id %q", pj.ID)
		}

		p := Product{
			ID:          pj.ID,
			Name:        pj.Name,
			Description: pj.Description,
			Image:       pj.Image,
			Variants:    make([]Variant, 0, len(pj.Variants)),
		}
		for _, vj := range pj.Variants {
			if vj.Price.IsNegative() {
				return nil, errors.Errorf("product %q variant %q has negative price", pj.ID, vj.ID)
			}
			p.Variants = append(p.Variants, Variant{
				ID:    vj.ID,
				Size:  vj.Size,
				Price: vj.Price,
			})
		}

		s.products = append(s.products, p)
		s.byID[p.ID] = &s.products[len(s.products)-1]
	}

	return s, nil
}

// List returns every product in catalog order.
func (s *Static) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// GetByID returns a single product by its identifier.
func (s *Static) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetVariant returns a product together with one of its variants.
func (s *Static) GetVariant(_ context.Context, productID, variantID string) (*Product, *Variant, error) {
	p, ok := s.byID[productID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return p, &p.Variants[i], nil
		}
	}
	return nil, nil, ErrNotFound
}
