// Package orders runs the admin side of the order lifecycle: the live
// board fed by the change stream, optimistic status changes, filters,
// kanban grouping and kitchen tickets.
package orders

import (
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
	"perrada/internal/store"
)

// BoardOrder is an order as the admin sees it: the remote document with
// any pending local change applied on top.
type BoardOrder struct {
	models.Order
	// Pending is set while a local status change has not been confirmed
	// by the change stream.
	Pending bool `json:"pending"`
	// WriteFailed is set when the background write behind a pending
	// change failed. The board keeps showing the local status until the
	// next remote snapshot of the order arrives.
	WriteFailed bool                `json:"writeFailed"`
	Next        *models.OrderStatus `json:"next,omitempty"`
	Prev        *models.OrderStatus `json:"prev,omitempty"`
}

func newBoardOrder(order models.Order) BoardOrder {
	bo := BoardOrder{Order: order}
	if next, ok := order.Status.Next(); ok {
		bo.Next = &next
	}
	if prev, ok := order.Status.Prev(); ok {
		bo.Prev = &prev
	}
	return bo
}

type overlay struct {
	order       models.Order
	writeFailed bool
}

// Board merges two sources: the remote snapshot from the database and
// the local overlays written by Advance. A remote snapshot of an order
// always replaces its overlay.
type Board struct {
	mu      sync.RWMutex
	remote  map[primitive.ObjectID]models.Order
	pending map[primitive.ObjectID]*overlay
	loaded  bool
}

func NewBoard() *Board {
	return &Board{
		remote:  make(map[primitive.ObjectID]models.Order),
		pending: make(map[primitive.ObjectID]*overlay),
	}
}

// Load replaces the remote snapshot with a full listing.
func (b *Board) Load(orders []models.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.remote = make(map[primitive.ObjectID]models.Order, len(orders))
	for _, order := range orders {
		b.remote[order.ID] = order
		delete(b.pending, order.ID)
	}
	b.loaded = true
}

func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// ApplyRemote applies one change stream event.
func (b *Board) ApplyRemote(change store.OrderChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch change.Type {
	case store.ChangeDelete:
		delete(b.remote, change.ID)
	case store.ChangeUpsert:
		if change.Order == nil {
			return
		}
		b.remote[change.ID] = *change.Order
	}
	delete(b.pending, change.ID)
}

// ApplyLocal records an optimistic change.
func (b *Board) ApplyLocal(order models.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[order.ID] = &overlay{order: order}
}

// MarkWriteFailed flags the overlay of id when it is still the one
// holding status. It reports whether an overlay was flagged.
func (b *Board) MarkWriteFailed(id primitive.ObjectID, status models.OrderStatus) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ov, ok := b.pending[id]
	if !ok || ov.order.Status != status {
		return false
	}
	ov.writeFailed = true
	return true
}

func (b *Board) Get(id primitive.ObjectID) (BoardOrder, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.get(id)
}

func (b *Board) get(id primitive.ObjectID) (BoardOrder, bool) {
	if ov, ok := b.pending[id]; ok {
		bo := newBoardOrder(ov.order)
		bo.Pending = true
		bo.WriteFailed = ov.writeFailed
		return bo, true
	}
	if order, ok := b.remote[id]; ok {
		return newBoardOrder(order), true
	}
	return BoardOrder{}, false
}

// View returns every order, newest first.
func (b *Board) View() []BoardOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]BoardOrder, 0, len(b.remote)+len(b.pending))
	for id := range b.remote {
		bo, _ := b.get(id)
		out = append(out, bo)
	}
	for id, ov := range b.pending {
		if _, ok := b.remote[id]; ok {
			continue
		}
		bo := newBoardOrder(ov.order)
		bo.Pending = true
		bo.WriteFailed = ov.writeFailed
		out = append(out, bo)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out
}

// Orders returns the merged orders without board annotations.
func (b *Board) Orders() []models.Order {
	view := b.View()
	out := make([]models.Order, len(view))
	for i, bo := range view {
		out[i] = bo.Order
	}
	return out
}

// Wrap annotates orders read straight from the database.
func Wrap(orders []models.Order) []BoardOrder {
	out := make([]BoardOrder, len(orders))
	for i, order := range orders {
		out[i] = newBoardOrder(order)
	}
	return out
}
