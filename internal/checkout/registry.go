package checkout

import "sync"

// Registry hands out the per-session checkout flow. Each session has exactly
// one writer, but the registry itself is shared across request goroutines.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*Flow
}

// NewRegistry returns an empty flow registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*Flow)}
}

// Get returns the session's flow, creating a fresh one on first use.
func (r *Registry) Get(sessionID string) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flows[sessionID]
	if !ok {
		f = NewFlow()
		r.flows[sessionID] = f
	}
	return f
}

// Reset discards the session's flow state, returning it to cart review.
// Called when the cart is cleared or an order is confirmed.
func (r *Registry) Reset(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.flows[sessionID]; ok {
		f.Reset()
	}
}
