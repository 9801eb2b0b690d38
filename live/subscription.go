package live

import (
	"context"

	"summa/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// State is one snapshot of a live query. Err leaves Data at the last good value.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Loader runs the query behind a subscription
type Loader[T any] func(ctx context.Context) (T, error)

// Subscription keeps a query result current by reloading it whenever one of
// its topics changes. It owns one goroutine, released by Cancel or by the end
// of the context it was opened with.
type Subscription[T any] struct {
	states chan State[T]
	cancel context.CancelFunc
	done   chan struct{}
}

// Subscribe opens a subscription. kind labels the active subscription metric.
// The first state delivered has Loading set.
func Subscribe[T any](ctx context.Context, hub *Hub, kind string, topics []string, load Loader[T]) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		states: make(chan State[T]),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Register before the first load so no change between load and listen is missed
	wake, release := hub.listen(topics)
	observability.GetMetrics().UpdateActiveSubscriptions(kind, 1)

	go func() {
		defer close(s.done)
		defer close(s.states)
		defer observability.GetMetrics().UpdateActiveSubscriptions(kind, -1)
		defer release()

		s.run(ctx, kind, wake, load)
	}()

	return s
}

func (s *Subscription[T]) run(ctx context.Context, kind string, wake <-chan struct{}, load Loader[T]) {
	var current State[T]
	current.Loading = true
	if !s.send(ctx, current) {
		return
	}

	for {
		data, err := load(ctx)
		if ctx.Err() != nil {
			return
		}

		current.Loading = false
		if err != nil {
			log.WithFields(log.Fields{
				"kind":  kind,
				"error": err,
			}).Warn("Live query failed")
			current.Err = err
		} else {
			current.Data = data
			current.Err = nil
		}

		if !s.send(ctx, current) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-wake:
		}
	}
}

func (s *Subscription[T]) send(ctx context.Context, state State[T]) bool {
	select {
	case s.states <- state:
		return true
	case <-ctx.Done():
		return false
	}
}

// States delivers snapshots until the subscription ends, then closes
func (s *Subscription[T]) States() <-chan State[T] {
	return s.states
}

// Cancel ends the subscription and waits for its goroutine to exit
func (s *Subscription[T]) Cancel() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription released its listener
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}
