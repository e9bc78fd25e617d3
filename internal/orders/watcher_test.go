package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"perrada/internal/models"
	"perrada/internal/store"
	"perrada/internal/store/mock_store"
)

func drainEvents(events <-chan Event) map[string]int {
	counts := map[string]int{}
	for len(events) > 0 {
		counts[(<-events).Name]++
	}
	return counts
}

func TestWatcherSyncLoadsAndFollowsChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_store.NewMockOrderRepository(ctrl)
	hub := NewHub()
	events, cancel := hub.Subscribe()
	defer cancel()

	existing := newOrder(models.StatusPreparing, base)
	incoming := newOrder(models.StatusPendingPayment, base.Add(time.Minute))
	board := NewBoard()

	repo.EXPECT().List(gomock.Any(), nil).Return([]models.Order{existing}, nil)
	repo.EXPECT().Watch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, opened func(), fn func(store.OrderChange)) error {
			opened()
			for !board.Loaded() {
				time.Sleep(time.Millisecond)
			}
			fn(store.OrderChange{Type: store.ChangeUpsert, ID: incoming.ID, Order: &incoming})
			fn(store.OrderChange{Type: store.ChangeUpsert, ID: incoming.ID, Order: &incoming})
			return nil
		})

	w := NewWatcher(repo, board, hub, NewNotifier(hub))
	require.NoError(t, w.Sync(context.Background()))

	view := board.View()
	require.Len(t, view, 2)
	assert.Equal(t, incoming.ID, view[0].ID)

	counts := drainEvents(events)
	assert.Equal(t, 1, counts[EventNewOrder])
	assert.Equal(t, 3, counts[EventBoard])
}

func TestWatcherKeepsChangesMadeWhileListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_store.NewMockOrderRepository(ctrl)
	hub := NewHub()
	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	existing := newOrder(models.StatusPreparing, base)
	placed := newOrder(models.StatusPendingPayment, base.Add(time.Minute))
	board := NewBoard()

	delivered := make(chan struct{})
	repo.EXPECT().Watch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, opened func(), fn func(store.OrderChange)) error {
			opened()
			fn(store.OrderChange{Type: store.ChangeUpsert, ID: placed.ID, Order: &placed})
			close(delivered)
			<-ctx.Done()
			return nil
		})
	repo.EXPECT().List(gomock.Any(), nil).DoAndReturn(
		func(context.Context, *time.Time) ([]models.Order, error) {
			<-delivered
			return []models.Order{existing}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	synced := make(chan error, 1)
	w := NewWatcher(repo, board, hub, NewNotifier(hub))
	go func() { synced <- w.Sync(ctx) }()

	require.Eventually(t, func() bool { return len(board.View()) == 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-synced)

	_, ok := board.Get(placed.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, drainEvents(events)[EventNewOrder])
}

func TestWatcherInitialLoadDoesNotAnnounceExistingOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_store.NewMockOrderRepository(ctrl)
	hub := NewHub()
	events, cancel := hub.Subscribe()
	defer cancel()

	waiting := newOrder(models.StatusPendingPayment, base)
	repo.EXPECT().Watch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, opened func(), _ func(store.OrderChange)) error {
			opened()
			return nil
		})
	repo.EXPECT().List(gomock.Any(), nil).Return([]models.Order{waiting}, nil)

	w := NewWatcher(repo, NewBoard(), hub, NewNotifier(hub))
	require.NoError(t, w.Sync(context.Background()))

	counts := drainEvents(events)
	assert.Zero(t, counts[EventNewOrder])
	assert.Equal(t, 1, counts[EventBoard])
}

func TestWatcherSyncFailsWhenStreamNeverOpens(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_store.NewMockOrderRepository(ctrl)
	lost := errors.New("not a replica set")
	repo.EXPECT().Watch(gomock.Any(), gomock.Any(), gomock.Any()).Return(lost)

	w := NewWatcher(repo, NewBoard(), NewHub(), NewNotifier(nil))

	assert.ErrorIs(t, w.Sync(context.Background()), lost)
}

func TestWatcherRunResubscribesAfterStreamDrops(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_store.NewMockOrderRepository(ctrl)
	board := NewBoard()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	existing := newOrder(models.StatusPreparing, base)
	repo.EXPECT().Watch(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("stream lost"))
	repo.EXPECT().Watch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, opened func(), _ func(store.OrderChange)) error {
			opened()
			<-ctx.Done()
			return nil
		})
	repo.EXPECT().List(gomock.Any(), nil).DoAndReturn(
		func(context.Context, *time.Time) ([]models.Order, error) {
			cancel()
			return []models.Order{existing}, nil
		})

	w := NewWatcher(repo, board, NewHub(), NewNotifier(nil))
	w.retryDelay = time.Millisecond

	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.True(t, board.Loaded())
	_, ok := board.Get(existing.ID)
	assert.True(t, ok)
}
