package simplestate

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Snapshot is the state and dispatch pair published to consumers.
// Version starts at 0 for the initial state and grows by one for every
// committed action.
type Snapshot[S any] struct {
	State    S
	Dispatch Dispatch
	Version  uint64
}

// subscriber wraps a snapshot callback with delivery bookkeeping
type subscriber[S any] struct {
	fn      func(Snapshot[S])
	seen    atomic.Uint64 // Highest version delivered
	removed atomic.Bool
}

// binding holds the current snapshot and the consumers listening to it.
// Only the owning store writes the snapshot.
type binding[S any] struct {
	current     atomic.Pointer[Snapshot[S]]
	subscribers []*subscriber[S]
	mu          sync.RWMutex
}

func (b *binding[S]) load() *Snapshot[S] {
	return b.current.Load()
}

func (b *binding[S]) subscribe(fn func(Snapshot[S])) func() {
	sub := &subscriber[S]{fn: fn}

	b.mu.Lock()
	sub.seen.Store(b.load().Version)
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(sub) })
	}
}

func (b *binding[S]) unsubscribe(sub *subscriber[S]) {
	sub.removed.Store(true)

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscribers {
		if s == sub {
			b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
			return
		}
	}
}

func (b *binding[S]) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// publish delivers snap to every subscriber that has not seen a newer version
func (b *binding[S]) publish(snap Snapshot[S], onPanic func(panicValue any)) {
	// Copy subscribers to avoid holding the lock during callbacks
	b.mu.RLock()
	subs := make([]*subscriber[S], len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.removed.Load() || !sub.advance(snap.Version) {
			continue
		}
		deliver(sub, snap, onPanic)
	}
}

// advance records version as delivered, unless a newer one already was
func (sub *subscriber[S]) advance(version uint64) bool {
	for {
		last := sub.seen.Load()
		if version <= last {
			return false
		}
		if sub.seen.CompareAndSwap(last, version) {
			return true
		}
	}
}

func deliver[S any](sub *subscriber[S], snap Snapshot[S], onPanic func(any)) {
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(r)
		}
	}()
	sub.fn(snap)
}

type scopeKey[S any] struct{}

// WithStore returns a context in which consumers of state type S find store
func WithStore[S any](ctx context.Context, store *Store[S]) context.Context {
	return context.WithValue(ctx, scopeKey[S]{}, store)
}

// FromContext returns the nearest store of state type S placed in ctx by
// WithStore or a Provider.
func FromContext[S any](ctx context.Context) (*Store[S], error) {
	store, ok := ctx.Value(scopeKey[S]{}).(*Store[S])
	if !ok || store == nil {
		return nil, fmt.Errorf("%w: state type %v", ErrNoProvider, reflect.TypeFor[S]())
	}
	return store, nil
}
