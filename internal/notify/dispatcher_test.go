package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/repository/memory"
)

func event(recipient uuid.UUID, projectID uuid.UUID) model.NotificationEvent {
	return model.NotificationEvent{
		RecipientID: recipient,
		Message:     "A new bid has been submitted",
		Type:        model.NotificationNewBid,
		ProjectID:   projectID,
	}
}

func TestDispatcherPersistsEvents(t *testing.T) {
	st := memory.NewNotificationStore()
	d := NewDispatcher(st, zerolog.Nop(), 3, 16)

	client := uuid.New()
	projectID := uuid.New()
	for i := 0; i < 5; i++ {
		d.Emit(event(client, projectID))
	}
	d.Emit(event(client, uuid.Nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	items, err := st.ListByUser(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, items, 6)

	withProject := 0
	for _, n := range items {
		require.False(t, n.IsRead)
		require.Equal(t, model.NotificationNewBid, n.Type)
		if n.ProjectID != nil {
			require.Equal(t, projectID, *n.ProjectID)
			withProject++
		}
	}
	require.Equal(t, 5, withProject)
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	st := memory.NewNotificationStore()
	d := NewDispatcher(st, zerolog.Nop(), 1, 4)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	recipient := uuid.New()
	d.Emit(event(recipient, uuid.New()))

	count, err := st.CountUnread(context.Background(), recipient)
	require.NoError(t, err)
	require.Zero(t, count)
}

type blockingStore struct {
	*memory.NotificationStore
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (s *blockingStore) Create(ctx context.Context, n *model.Notification) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.NotificationStore.Create(ctx, n)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	st := &blockingStore{
		NotificationStore: memory.NewNotificationStore(),
		release:           make(chan struct{}),
		started:           make(chan struct{}),
	}
	d := NewDispatcher(st, zerolog.Nop(), 1, 1)

	recipient := uuid.New()
	d.Emit(event(recipient, uuid.New()))
	<-st.started

	// One event fits in the queue while the worker is blocked, the rest are dropped.
	d.Emit(event(recipient, uuid.New()), event(recipient, uuid.New()), event(recipient, uuid.New()))
	close(st.release)
	require.NoError(t, d.Close(context.Background()))

	count, err := st.CountUnread(context.Background(), recipient)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestDispatcherCloseHonoursContext(t *testing.T) {
	st := &blockingStore{
		NotificationStore: memory.NewNotificationStore(),
		release:           make(chan struct{}),
		started:           make(chan struct{}),
	}
	d := NewDispatcher(st, zerolog.Nop(), 1, 1)
	d.Emit(event(uuid.New(), uuid.New()))
	<-st.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Close(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	close(st.release)
}
