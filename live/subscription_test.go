package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"summa/domain/events"
	busevents "summa/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next[T any](t *testing.T, sub *Subscription[T]) State[T] {
	t.Helper()
	select {
	case state, ok := <-sub.States():
		require.True(t, ok, "subscription closed")
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("no state within timeout")
	}
	return State[T]{}
}

func TestSubscription_FirstStateIsLoading(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sub := Subscribe(context.Background(), hub, "test", []string{"a"}, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	defer sub.Cancel()

	first := next(t, sub)
	assert.True(t, first.Loading)
	assert.Zero(t, first.Data)

	loaded := next(t, sub)
	assert.False(t, loaded.Loading)
	assert.Equal(t, 7, loaded.Data)
	assert.NoError(t, loaded.Err)
}

func TestSubscription_ReloadsOnEveryChange(t *testing.T) {
	t.Parallel()

	bus := busevents.NewBus()
	hub := NewHub(bus)

	var loads atomic.Int32
	sub := Subscribe(context.Background(), hub, "players", []string{events.PlayersTopic("s1")}, func(ctx context.Context) (int32, error) {
		return loads.Add(1), nil
	})
	defer sub.Cancel()

	next(t, sub)
	assert.Equal(t, int32(1), next(t, sub).Data)

	bus.Emit(context.Background(), events.PlayerAddedEvent{GameSessionID: "s1", UserID: "u1"})
	assert.Equal(t, int32(2), next(t, sub).Data)

	bus.Emit(context.Background(), events.PlayerUpdatedEvent{GameSessionID: "s1", UserID: "u1"})
	assert.Equal(t, int32(3), next(t, sub).Data)
}

func TestSubscription_IgnoresOtherTopics(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	var loads atomic.Int32
	sub := Subscribe(context.Background(), hub, "session", []string{events.GameSessionTopic("s1")}, func(ctx context.Context) (int32, error) {
		return loads.Add(1), nil
	})
	defer sub.Cancel()

	next(t, sub)
	next(t, sub)

	hub.Notify(events.GameSessionTopic("s2"))

	select {
	case state := <-sub.States():
		t.Fatalf("unexpected state %+v", state)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestSubscription_ErrorKeepsPreviousData(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	boom := errors.New("connection reset")
	var loads atomic.Int32
	sub := Subscribe(context.Background(), hub, "session", []string{"t"}, func(ctx context.Context) (string, error) {
		switch loads.Add(1) {
		case 2:
			return "", boom
		default:
			return "snapshot", nil
		}
	})
	defer sub.Cancel()

	next(t, sub)
	assert.Equal(t, "snapshot", next(t, sub).Data)

	hub.Notify("t")
	failed := next(t, sub)
	assert.ErrorIs(t, failed.Err, boom)
	assert.Equal(t, "snapshot", failed.Data)
	assert.False(t, failed.Loading)

	hub.Notify("t")
	recovered := next(t, sub)
	assert.NoError(t, recovered.Err)
	assert.Equal(t, "snapshot", recovered.Data)
}

func TestSubscription_CancelReleasesListener(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sub := Subscribe(context.Background(), hub, "session", []string{"x", "y"}, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	assert.Equal(t, 1, hub.ListenerCount("x"))
	assert.Equal(t, 1, hub.ListenerCount("y"))

	sub.Cancel()

	assert.Zero(t, hub.ListenerCount("x"))
	assert.Zero(t, hub.ListenerCount("y"))
	_, open := <-sub.States()
	assert.False(t, open)
}

func TestSubscription_ContextEndReleasesListener(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	sub := Subscribe(ctx, hub, "session", []string{"x"}, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	next(t, sub)

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription outlived its context")
	}
	assert.Zero(t, hub.ListenerCount("x"))
}

func TestHub_NotifyCoalescesPendingWakeups(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	wake, release := hub.listen([]string{"a", "b"})
	defer release()

	hub.Notify("a", "b")
	hub.Notify("a")

	<-wake
	select {
	case <-wake:
		t.Fatal("wakeups were not coalesced")
	default:
	}
}
