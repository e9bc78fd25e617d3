package orders

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"perrada/internal/store"
)

const resubscribeDelay = 5 * time.Second

var errStreamNotOpened = errors.New("order stream closed before it opened")

// Watcher keeps the board in sync with the orders collection.
type Watcher struct {
	repo       store.OrderRepository
	board      *Board
	hub        *Hub
	notifier   *Notifier
	retryDelay time.Duration

	// Changes that arrive while the initial listing runs are held in
	// buffered and applied right after the board is loaded.
	mu        sync.Mutex
	buffering bool
	buffered  []store.OrderChange
	synced    bool
}

func NewWatcher(repo store.OrderRepository, board *Board, hub *Hub, notifier *Notifier) *Watcher {
	return &Watcher{repo: repo, board: board, hub: hub, notifier: notifier, retryDelay: resubscribeDelay}
}

// Sync opens the change stream, loads every order into the board and
// then follows the stream until ctx is done or the stream fails. The
// stream is open before the listing starts, so nothing written in
// between is lost.
func (w *Watcher) Sync(ctx context.Context) error {
	watchCtx, stop := context.WithCancel(ctx)
	defer stop()

	w.mu.Lock()
	w.buffering = true
	w.buffered = nil
	w.mu.Unlock()

	opened := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- w.repo.Watch(watchCtx, func() { close(opened) }, w.receive)
	}()

	var (
		watchErr  error
		watchDone bool
	)
	select {
	case <-opened:
	case watchErr = <-done:
		watchDone = true
	case <-ctx.Done():
		return ctx.Err()
	}
	if watchDone {
		select {
		case <-opened:
		default:
			if watchErr == nil {
				watchErr = errStreamNotOpened
			}
			return watchErr
		}
	}

	loadCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	orders, err := w.repo.List(loadCtx, nil)
	cancel()
	if err != nil {
		stop()
		if !watchDone {
			<-done
		}
		return err
	}

	w.mu.Lock()
	w.board.Load(orders)
	if w.synced {
		for _, order := range orders {
			w.notifier.Observe(order)
		}
	} else {
		w.notifier.Seed(orders)
	}
	for _, change := range w.buffered {
		w.apply(change)
	}
	log.Printf("[WATCH] [INFO] board loaded with %d orders, %d changes replayed", len(orders), len(w.buffered))
	w.buffered = nil
	w.buffering = false
	w.synced = true
	w.mu.Unlock()

	w.hub.Publish(Event{Name: EventBoard})

	if watchDone {
		return watchErr
	}
	return <-done
}

func (w *Watcher) receive(change store.OrderChange) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buffering {
		w.buffered = append(w.buffered, change)
		return
	}
	w.apply(change)
}

func (w *Watcher) apply(change store.OrderChange) {
	w.board.ApplyRemote(change)
	if change.Type == store.ChangeUpsert && change.Order != nil {
		w.notifier.Observe(*change.Order)
	}
	w.hub.Publish(Event{Name: EventBoard, OrderID: change.ID})
}

// Run calls Sync until ctx is done, reloading the board after the
// stream drops.
func (w *Watcher) Run(ctx context.Context) {
	for {
		err := w.Sync(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[WATCH] [ERROR] order stream stopped: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryDelay):
		}
	}
}
