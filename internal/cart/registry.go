package cart

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

// Registry maps session ids to carts. All access goes through the
// registry lock; callers never hold a *Cart. A session with a checkout in
// flight is marked in checkingOut and its writers wait on settled.
type Registry struct {
	mu          sync.Mutex
	settled     *sync.Cond
	carts       map[string]*Cart
	checkingOut map[string]bool
}

func NewRegistry() *Registry {
	r := &Registry{
		carts:       make(map[string]*Cart),
		checkingOut: make(map[string]bool),
	}
	r.settled = sync.NewCond(&r.mu)
	return r
}

// waitSettled blocks until no checkout runs for sessionID. r.mu must be
// held.
func (r *Registry) waitSettled(sessionID string) {
	for r.checkingOut[sessionID] {
		r.settled.Wait()
	}
}

// Update runs fn against the session cart, creating it when missing, and
// returns the resulting snapshot.
func (r *Registry) Update(sessionID string, fn func(*Cart)) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.waitSettled(sessionID)
	c, ok := r.carts[sessionID]
	if !ok {
		c = New()
		r.carts[sessionID] = c
	}
	fn(c)
	return c.Snapshot()
}

func (r *Registry) Snapshot(sessionID string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[sessionID]
	if !ok {
		return New().Snapshot()
	}
	return c.Snapshot()
}

func (r *Registry) Add(sessionID string, product models.Product) Snapshot {
	return r.Update(sessionID, func(c *Cart) { c.Add(product) })
}

func (r *Registry) Remove(sessionID string, productID primitive.ObjectID) Snapshot {
	return r.Update(sessionID, func(c *Cart) { c.Remove(productID) })
}

// SetQuantity reports false when the product was not in the cart.
func (r *Registry) SetQuantity(sessionID string, productID primitive.ObjectID, quantity int) (Snapshot, bool) {
	var found bool
	snap := r.Update(sessionID, func(c *Cart) { found = c.SetQuantity(productID, quantity) })
	return snap, found
}

// Checkout hands the cart to fn and drops it when fn succeeds. The
// registry lock is released while fn runs; other writers of the same
// session wait for it to finish, other sessions do not.
func (r *Registry) Checkout(sessionID string, fn func(*Cart) error) error {
	r.mu.Lock()
	r.waitSettled(sessionID)
	c, ok := r.carts[sessionID]
	if !ok {
		c = New()
	}
	r.checkingOut[sessionID] = true
	r.mu.Unlock()

	err := fn(c)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkingOut, sessionID)
	if err == nil && r.carts[sessionID] == c {
		delete(r.carts, sessionID)
	}
	r.settled.Broadcast()
	return err
}

// ClearAll empties every cart. Used when the shop closes.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.carts)
	r.carts = make(map[string]*Cart)
	return n
}
