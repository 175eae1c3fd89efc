package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/finpulse/finpulse/internal/metrics"
)

// Handler consumes a single event. A returned error is logged at the
// dispatch boundary and never reaches the producer.
type Handler func(ctx context.Context, ev Event) error

// Bus is an in-process, synchronous, multi-consumer publish/subscribe
// channel. Handlers for a kind run in registration order; a failing or
// panicking handler never prevents later handlers from observing the event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

// NewBus allocates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// On registers handler for every future Emit of kind. Registration always
// succeeds; there is no limit on handlers per kind.
func (b *Bus) On(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Emit dispatches ev to every handler registered for its kind, in
// registration order. Emit returns once all handlers have run; it never
// returns an error because downstream failures must not fail the producer's
// transaction.
func (b *Bus) Emit(ctx context.Context, ev Event) {
	b.mu.RLock()
	handlers := b.handlers[ev.Kind()]
	b.mu.RUnlock()

	metrics.EventsEmitted.WithLabelValues(string(ev.Kind())).Inc()

	for _, h := range handlers {
		if err := b.dispatch(ctx, h, ev); err != nil {
			metrics.HandlerErrors.WithLabelValues(string(ev.Kind())).Inc()
			slog.Error("event handler failed",
				"kind", ev.Kind(),
				"user_id", ev.User(),
				"err", err,
			)
		}
	}
}

// dispatch runs one handler, converting panics into errors so a misbehaving
// consumer cannot take down the producer or its sibling handlers.
func (b *Bus) dispatch(ctx context.Context, h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, ev)
}
