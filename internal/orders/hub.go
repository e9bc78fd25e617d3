package orders

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

const (
	EventBoard    = "board"
	EventNewOrder = "new-order"

	subscriberBuffer = 16
)

type Event struct {
	Name    string
	OrderID primitive.ObjectID
	Order   *models.Order
}

// Hub fans events out to stream subscribers. A subscriber that is not
// keeping up loses events instead of blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe returns the event channel and a cancel func that must be
// called once the subscriber is done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
