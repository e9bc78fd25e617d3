package orders

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

// Notifier announces each order first seen waiting for payment exactly
// once. The seen set lives in memory and is empty after a restart.
type Notifier struct {
	mu   sync.Mutex
	seen map[primitive.ObjectID]struct{}
	hub  *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{seen: make(map[primitive.ObjectID]struct{}), hub: hub}
}

// Observe publishes a new-order event for order unless it was already
// announced. It reports whether an event was published.
func (n *Notifier) Observe(order models.Order) bool {
	if order.Status != models.StatusPendingPayment {
		return false
	}

	n.mu.Lock()
	if _, ok := n.seen[order.ID]; ok {
		n.mu.Unlock()
		return false
	}
	n.seen[order.ID] = struct{}{}
	n.mu.Unlock()

	if n.hub != nil {
		o := order
		n.hub.Publish(Event{Name: EventNewOrder, OrderID: order.ID, Order: &o})
	}
	return true
}

// Seed marks orders as already announced without publishing anything.
// It is used for the orders that exist when the board first loads.
func (n *Notifier) Seed(orders []models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, order := range orders {
		n.seen[order.ID] = struct{}{}
	}
}
