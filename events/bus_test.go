package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"summa/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToMainBus(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan events.PlayerAddedEvent, 1)
	mainBus.Subscribe(events.EventTypePlayerAdded, func(ctx context.Context, event events.Event) {
		if added, ok := event.(events.PlayerAddedEvent); ok {
			received <- added
		} else {
			t.Errorf("Expected PlayerAddedEvent, got %T", event)
		}
	})

	testEvent := events.PlayerAddedEvent{GameSessionID: "s1", UserID: "u1", Buyins: 1, StackBb: 200}
	require.NoError(t, transactionalBus.Publish(testEvent))

	select {
	case <-received:
		t.Fatal("event delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	calls := 0
	mainBus.SubscribeAll(func(ctx context.Context, event events.Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.NoError(t, transactionalBus.Publish(events.PlayerRemovedEvent{GameSessionID: "s1", UserID: "u1"}))
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestBus_MultipleHandlersAndPanicRecovery(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe(events.EventTypeUserUpdated, func(ctx context.Context, event events.Event) {
		defer wg.Done()
		panic("boom")
	})
	bus.Subscribe(events.EventTypeUserUpdated, func(ctx context.Context, event events.Event) {
		defer wg.Done()
	})

	require.NoError(t, bus.Publish(events.UserUpdatedEvent{UserID: "u1", Username: "nit"}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}
}

type recordingPublisher struct {
	published []events.Event
	failOn    events.EventType
}

func (p *recordingPublisher) Publish(event events.Event) error {
	if event.Type() == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func TestTransactionalBus_FlushContinuesPastFailures(t *testing.T) {
	publisher := &recordingPublisher{failOn: events.EventTypePlayerAdded}
	transactionalBus := NewTransactionalBus(publisher)

	require.NoError(t, transactionalBus.Publish(events.PlayerAddedEvent{GameSessionID: "s1", UserID: "u1"}))
	require.NoError(t, transactionalBus.Publish(events.GameSessionUpdatedEvent{GameSessionID: "s1"}))
	assert.Empty(t, publisher.published)

	require.NoError(t, transactionalBus.Flush(context.Background()))
	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventTypeGameSessionUpdated, publisher.published[0].Type())

	// pending queue is cleared after flush
	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Len(t, publisher.published, 1)
}
