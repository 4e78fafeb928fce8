package batch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrBusy is returned by Submit while another batch is in flight.
var ErrBusy = errors.New("a batch is already running")

// Queue runs at most one batch at a time on a single worker goroutine and
// streams its progress as events.
type Queue struct {
	log *zap.Logger

	mu   sync.Mutex
	busy bool
}

// NewQueue returns an idle queue.
func NewQueue(log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{log: log}
}

// Busy reports whether a batch is in flight.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

// Submit validates cfg and starts it. The returned channel yields Started,
// one File event per source and a final Done, then closes. The caller must
// drain the channel; the worker blocks on each send. The queue is idle again
// by the time Done is received.
func (q *Queue) Submit(ctx context.Context, cfg RunConfig) (<-chan Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	if q.busy {
		q.mu.Unlock()
		return nil, ErrBusy
	}
	q.busy = true
	q.mu.Unlock()

	cfg = cfg.clone()
	events := make(chan Event)
	go func() {
		defer close(events)
		res, err := Run(ctx, cfg, q.log, func(ev Event) { events <- ev })
		q.mu.Lock()
		q.busy = false
		q.mu.Unlock()
		events <- Event{Kind: EventDone, Result: res, Err: err}
	}()
	return events, nil
}

// Drain consumes events, calling fn for each, and returns the outcome
// carried by the Done event.
func Drain(events <-chan Event, fn func(Event)) (*Result, error) {
	var (
		res *Result
		err error
	)
	for ev := range events {
		if fn != nil {
			fn(ev)
		}
		if ev.Kind == EventDone {
			res, err = ev.Result, ev.Err
		}
	}
	return res, err
}
