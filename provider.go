package simplestate

import (
	"context"
	"fmt"
	"sync"
)

// Component renders part of an application. The context carries the stores
// of every enclosing provider.
type Component func(ctx context.Context)

// Unmount stops a rendered provider or consumer from reacting to new
// snapshots. It is safe to call more than once.
type Unmount func()

// Provider owns one store and makes it available to a child component
type Provider[S any] struct {
	store *Store[S]
}

// NewProvider creates a provider with a fresh store
func NewProvider[S any](cfg Config[S], opts ...Option) *Provider[S] {
	return &Provider[S]{store: NewStore(cfg, opts...)}
}

// Store returns the provider's store
func (p *Provider[S]) Store() *Store[S] {
	return p.store
}

// Render renders exactly one child with the store in scope. The child is
// rendered once immediately and again after every committed action, until
// Unmount is called or ctx is done.
func (p *Provider[S]) Render(ctx context.Context, children ...Component) (Unmount, error) {
	if len(children) != 1 || children[0] == nil {
		return nil, fmt.Errorf("%w: provider got %d", ErrChildCount, countChildren(children))
	}
	child := children[0]
	scoped := WithStore(ctx, p.store)

	unsubscribe := p.store.Subscribe(func(Snapshot[S]) {
		if scoped.Err() == nil {
			child(scoped)
		}
	})
	stop := context.AfterFunc(ctx, unsubscribe)

	child(scoped)

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			unsubscribe()
		})
	}, nil
}

func countChildren(children []Component) int {
	n := 0
	for _, c := range children {
		if c != nil {
			n++
		}
	}
	return n
}
