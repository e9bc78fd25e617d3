package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
	"perrada/internal/store"
)

var ErrTransitionNotOffered = errors.New("transition not offered")

const writeTimeout = 5 * time.Second

// Service applies status changes to the board first and persists them
// afterwards in the background. A failed write is logged and flagged on
// the board; nothing is rolled back.
type Service struct {
	repo   store.OrderRepository
	board  *Board
	hub    *Hub
	writes bool
	now    func() time.Time

	wg sync.WaitGroup

	// queues holds the unsent writes per order. An entry exists while a
	// drain goroutine owns that order.
	queueMu sync.Mutex
	queues  map[primitive.ObjectID][]statusWrite
}

type statusWrite struct {
	status models.OrderStatus
	at     time.Time
}

type ServiceOption func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService builds the service. With writes false status changes stay
// on the board only and are never stored.
func NewService(repo store.OrderRepository, board *Board, hub *Hub, writes bool, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		board:  board,
		hub:    hub,
		writes: writes,
		now:    time.Now,
		queues: make(map[primitive.ObjectID][]statusWrite),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Board() *Board { return s.board }

// Current returns the order as the board shows it, falling back to the
// database when the board has not seen it.
func (s *Service) Current(ctx context.Context, id primitive.ObjectID) (BoardOrder, error) {
	if bo, ok := s.board.Get(id); ok {
		return bo, nil
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return BoardOrder{}, err
	}
	return newBoardOrder(order), nil
}

// Advance moves order id to target. target must be the next or previous
// status of what the board currently shows.
func (s *Service) Advance(ctx context.Context, id primitive.ObjectID, target models.OrderStatus) (BoardOrder, error) {
	current, err := s.Current(ctx, id)
	if err != nil {
		return BoardOrder{}, err
	}

	if !offered(current.Status, target) {
		return BoardOrder{}, fmt.Errorf("%w: %s -> %s", ErrTransitionNotOffered, current.Status, target)
	}

	at := s.now().UTC()
	updated := current.Order.WithStatus(target, at)
	s.board.ApplyLocal(updated)
	s.publish(id)

	if s.writes {
		s.enqueue(id, statusWrite{status: target, at: at})
	} else {
		log.Printf("[ORDER] [INFO] status writes disabled; order %s moved to %s on the board only", id.Hex(), target)
	}

	bo, _ := s.board.Get(id)
	return bo, nil
}

// Forward advances to the next status.
func (s *Service) Forward(ctx context.Context, id primitive.ObjectID) (BoardOrder, error) {
	current, err := s.Current(ctx, id)
	if err != nil {
		return BoardOrder{}, err
	}
	next, ok := current.Status.Next()
	if !ok {
		return BoardOrder{}, fmt.Errorf("%w: no status after %s", ErrTransitionNotOffered, current.Status)
	}
	return s.Advance(ctx, id, next)
}

// Back moves the order one status back.
func (s *Service) Back(ctx context.Context, id primitive.ObjectID) (BoardOrder, error) {
	current, err := s.Current(ctx, id)
	if err != nil {
		return BoardOrder{}, err
	}
	prev, ok := current.Status.Prev()
	if !ok {
		return BoardOrder{}, fmt.Errorf("%w: no status before %s", ErrTransitionNotOffered, current.Status)
	}
	return s.Advance(ctx, id, prev)
}

// Wait blocks until every background write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// enqueue schedules a write. Writes for one order reach the database
// in the order they were made.
func (s *Service) enqueue(id primitive.ObjectID, w statusWrite) {
	s.wg.Add(1)

	s.queueMu.Lock()
	queue, draining := s.queues[id]
	s.queues[id] = append(queue, w)
	s.queueMu.Unlock()

	if !draining {
		go s.drain(id)
	}
}

func (s *Service) drain(id primitive.ObjectID) {
	for {
		s.queueMu.Lock()
		queue := s.queues[id]
		if len(queue) == 0 {
			delete(s.queues, id)
			s.queueMu.Unlock()
			return
		}
		next := queue[0]
		s.queues[id] = queue[1:]
		s.queueMu.Unlock()

		s.persist(id, next.status, next.at)
	}
}

func (s *Service) persist(id primitive.ObjectID, status models.OrderStatus, at time.Time) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.repo.UpdateStatus(ctx, id, status, at); err != nil {
		log.Printf("[ORDER] [ERROR] status write failed for order %s (%s): %v", id.Hex(), status, err)
		if s.board.MarkWriteFailed(id, status) {
			s.publish(id)
		}
	}
}

func (s *Service) publish(id primitive.ObjectID) {
	if s.hub != nil {
		s.hub.Publish(Event{Name: EventBoard, OrderID: id})
	}
}

func offered(from, to models.OrderStatus) bool {
	if next, ok := from.Next(); ok && next == to {
		return true
	}
	if prev, ok := from.Prev(); ok && prev == to {
		return true
	}
	return false
}
