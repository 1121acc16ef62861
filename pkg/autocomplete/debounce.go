package autocomplete

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultDebounce is the delay used by fetchers when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// ErrSuperseded is returned to a collapsed caller whose key differs from the
// key of the trailing call that ran in its place.
var ErrSuperseded = errors.New("lookup superseded")

type debounceWaiter[K comparable, V any] struct {
	key K
	ch  chan debounceResult[V]
}

type debounceResult[V any] struct {
	value V
	err   error
}

// Debouncer limits how often a lookup runs during fast typing. The first
// call of a burst runs right away. Calls made while the window is open are
// collapsed into a single trailing call with the latest arguments. Collapsed
// callers that asked for the same key receive that call's result. A caller
// gets ErrSuperseded as soon as a later call asks for another key.
type Debouncer[K comparable, V any] struct {
	wait time.Duration

	mu      sync.Mutex
	version uint64
	open    bool
	key     K
	pending func(context.Context) (V, error)
	ctx     context.Context
	waiters []debounceWaiter[K, V]
	timer   *time.Timer
}

// NewDebouncer creates a debouncer with the given window
func NewDebouncer[K comparable, V any](wait time.Duration) *Debouncer[K, V] {
	return &Debouncer[K, V]{wait: wait}
}

// Do runs fn now, or later as the trailing call of the current burst. key
// identifies the arguments fn was built from.
func (d *Debouncer[K, V]) Do(ctx context.Context, key K, fn func(context.Context) (V, error)) (V, error) {
	d.mu.Lock()
	d.version++
	version := d.version
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.flush(version) })

	if !d.open {
		d.open = true
		d.mu.Unlock()
		return fn(ctx)
	}

	kept := d.waiters[:0]
	for _, w := range d.waiters {
		if w.key != key {
			w.ch <- debounceResult[V]{err: ErrSuperseded}
			continue
		}
		kept = append(kept, w)
	}
	d.waiters = kept

	ch := make(chan debounceResult[V], 1)
	d.key = key
	d.pending = fn
	d.ctx = ctx
	d.waiters = append(d.waiters, debounceWaiter[K, V]{key: key, ch: ch})
	d.mu.Unlock()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (d *Debouncer[K, V]) flush(version uint64) {
	d.mu.Lock()
	if version != d.version {
		d.mu.Unlock()
		return
	}
	key, fn, ctx, waiters := d.key, d.pending, d.ctx, d.waiters
	var zeroKey K
	d.key, d.pending, d.ctx, d.waiters = zeroKey, nil, nil, nil
	d.open = false
	d.timer = nil
	d.mu.Unlock()

	if fn == nil {
		return
	}

	value, err := fn(ctx)
	for _, w := range waiters {
		if w.key != key {
			w.ch <- debounceResult[V]{err: ErrSuperseded}
			continue
		}
		w.ch <- debounceResult[V]{value: value, err: err}
	}
}
