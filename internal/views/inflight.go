// ABOUTME: Request lifetime tracking for a view
// ABOUTME: New loads cancel older ones and Close cancels everything outstanding

package views

import (
	"context"
	"sync"
)

// inflight ties a view's requests to the view's lifetime. Loads supersede
// each other; other operations only end with the view.
type inflight struct {
	life context.Context
	end  context.CancelFunc

	mu         sync.Mutex
	closed     bool
	seq        uint64
	cancelLoad context.CancelFunc
}

func newInflight() *inflight {
	life, end := context.WithCancel(context.Background())
	return &inflight{life: life, end: end}
}

// load starts a request that cancels the previous load.
func (f *inflight) load(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelLoad != nil {
		f.cancelLoad()
	}
	f.seq++
	ctx, cancel := f.bind(parent)
	f.cancelLoad = cancel
	return ctx, f.seq, cancel
}

// current reports whether seq is still the latest load of an open view.
func (f *inflight) current(seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed && seq == f.seq
}

// op starts a request that ends only with the view.
func (f *inflight) op(parent context.Context) (context.Context, context.CancelFunc) {
	return f.bind(parent)
}

func (f *inflight) open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *inflight) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.end()
}

func (f *inflight) bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(f.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
