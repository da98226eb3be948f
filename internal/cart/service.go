package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dkpi/kefir-shop/internal/catalog"
)

// Store persists serialized cart lines per browsing session under a fixed
// key. Load returns (nil, nil) when no cart has been saved yet.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// Service orchestrates cart mutations for all sessions: catalog lookups,
// quantity rules, and durable persistence. Each session has exactly one cart;
// the cart is restored from the store on first touch and persisted after
// every successful mutation, never before the restore has completed.
type Service struct {
	catalog catalog.Repository
	store   Store

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewService creates a cart Service backed by the given catalog and store.
func NewService(cat catalog.Repository, store Store) *Service {
	return &Service{
		catalog: cat,
		store:   store,
		carts:   make(map[string]*Cart),
	}
}

// get returns the session's cart, restoring it from the store on first
// touch. Corrupt persisted data resets the cart to empty rather than failing.
func (s *Service) get(ctx context.Context, sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[sessionID]; ok {
		return c
	}

	c := New()
	data, err := s.store.Load(ctx, sessionID)
	switch {
	case err != nil:
		zctx.From(ctx).Warn("Cart restore failed, starting empty",
			zap.String("session", sessionID), zap.Error(err))
	case data != nil:
		lines, err := DecodeLines(data)
		if err != nil {
			zctx.From(ctx).Warn("Persisted cart corrupt, resetting",
				zap.String("session", sessionID), zap.Error(err))
		} else {
			c = Restore(lines)
		}
	}

	s.carts[sessionID] = c
	return c
}

// persist writes the session's current lines to the store. Persistence
// failures are surfaced so the handler can report a 500; the in-memory state
// is already mutated and remains authoritative for the session.
func (s *Service) persist(ctx context.Context, sessionID string, c *Cart) error {
	if err := s.store.Save(ctx, sessionID, EncodeLines(c.Lines())); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

// AddItem looks up the (productID, variantID) pair in the catalog and merges
// qty units into the session's cart. A catalog miss is a silent no-op for
// cart mutations.
func (s *Service) AddItem(ctx context.Context, sessionID, productID, variantID string, qty int) error {
	p, v, err := s.catalog.GetVariant(ctx, productID, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			zctx.From(ctx).Debug("Add ignored, unknown catalog pair",
				zap.String("product", productID), zap.String("variant", variantID))
			return nil
		}
		return errors.Wrap(err, "catalog lookup")
	}

	c := s.get(ctx, sessionID)
	c.AddItem(p, v, qty)
	return s.persist(ctx, sessionID, c)
}

// DecrementOrRemove applies the stepper "-" contract to the session's cart.
func (s *Service) DecrementOrRemove(ctx context.Context, sessionID, productID, variantID string) error {
	c := s.get(ctx, sessionID)
	if !c.DecrementOrRemove(productID, variantID) {
		return nil
	}
	return s.persist(ctx, sessionID, c)
}

// RemoveEntirely deletes the whole line from the session's cart.
func (s *Service) RemoveEntirely(ctx context.Context, sessionID, productID, variantID string) error {
	c := s.get(ctx, sessionID)
	if !c.RemoveEntirely(productID, variantID) {
		return nil
	}
	return s.persist(ctx, sessionID, c)
}

// UpdateQuantity sets a line's quantity directly, within [1, MaxQuantity].
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID, variantID string, newQty int) error {
	c := s.get(ctx, sessionID)
	if !c.UpdateQuantity(productID, variantID, newQty) {
		return nil
	}
	return s.persist(ctx, sessionID, c)
}

// Clear empties the session's cart and removes its persisted state.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	c := s.get(ctx, sessionID)
	c.Clear()
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "delete persisted cart")
	}
	return nil
}

// Snapshot returns the session's lines and recomputed subtotal.
func (s *Service) Snapshot(ctx context.Context, sessionID string) ([]Line, decimal.Decimal) {
	c := s.get(ctx, sessionID)
	return c.Lines(), c.Subtotal()
}

// IsMaxQuantityReached reports whether the line is at the quantity ceiling.
func (s *Service) IsMaxQuantityReached(ctx context.Context, sessionID, productID, variantID string) bool {
	return s.get(ctx, sessionID).IsMaxQuantityReached(productID, variantID)
}

// GetQuantity returns the current quantity for the pair, 0 when absent.
func (s *Service) GetQuantity(ctx context.Context, sessionID, productID, variantID string) int {
	return s.get(ctx, sessionID).GetQuantity(productID, variantID)
}

// IsEmpty reports whether the session's cart holds no lines.
func (s *Service) IsEmpty(ctx context.Context, sessionID string) bool {
	return s.get(ctx, sessionID).IsEmpty()
}
