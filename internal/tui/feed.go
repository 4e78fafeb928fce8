package tui

import (
	"sync"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
)

// Feed drains a run's events on its own goroutine and forwards them to a
// Model. The run's result is collected by the feed, not the model, so a view
// that quits early cannot lose the Done event.
type Feed struct {
	out  chan batch.Event
	quit chan struct{}
	done chan struct{}
	once sync.Once

	res *batch.Result
	err error
}

// NewFeed starts draining src.
func NewFeed(src <-chan batch.Event) *Feed {
	f := &Feed{
		out:  make(chan batch.Event),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(f.done)
		defer close(f.out)
		f.res, f.err = batch.Drain(src, func(ev batch.Event) {
			select {
			case f.out <- ev:
			case <-f.quit:
			}
		})
	}()
	return f
}

// Events is the channel a Model reads from.
func (f *Feed) Events() <-chan batch.Event { return f.out }

// Close stops forwarding, waits for src to be drained and returns the run's
// result. It is safe to call more than once.
func (f *Feed) Close() (*batch.Result, error) {
	f.once.Do(func() { close(f.quit) })
	<-f.done
	return f.res, f.err
}
