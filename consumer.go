package simplestate

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Use reads the nearest store of state type S and returns the projected
// state and dispatch. A nil mapState or mapDispatch is the identity, which
// requires M to hold S and D to hold Dispatch.
//
// Use does not subscribe; a component calling it inside Provider.Render is
// rendered again with fresh values after every committed action.
func Use[S, M, D any](ctx context.Context, mapState func(S) M, mapDispatch func(Dispatch) D) (M, D, error) {
	var (
		zeroM M
		zeroD D
	)

	store, err := FromContext[S](ctx)
	if err != nil {
		return zeroM, zeroD, err
	}

	snap := store.Snapshot()
	state, err := project(snap.State, mapState)
	if err != nil {
		return zeroM, zeroD, err
	}
	dispatch, err := project(snap.Dispatch, mapDispatch)
	if err != nil {
		return zeroM, zeroD, err
	}
	return state, dispatch, nil
}

// UseState returns the unprojected state and dispatch of the nearest store
func UseState[S any](ctx context.Context) (S, Dispatch, error) {
	return Use[S, S, Dispatch](ctx, nil, nil)
}

// Consumer renders Children with projected state, but only when the
// projected state changed according to Compare.
type Consumer[S, M, D any] struct {
	// MapState projects the store state; nil means identity
	MapState func(S) M
	// MapDispatch projects the dispatch function on every render; nil means identity
	MapDispatch func(Dispatch) D
	// Children is the render function
	Children func(state M, dispatch D)
	// Compare reports whether next differs from prev; defaults to ShallowCompare
	Compare func(prev, next M) bool
}

// Mount renders the consumer once and subscribes it to the nearest store of
// state type S. It stops when Unmount is called or ctx is done.
func (c *Consumer[S, M, D]) Mount(ctx context.Context) (Unmount, error) {
	if c.Children == nil {
		return nil, fmt.Errorf("%w: consumer got 0", ErrChildCount)
	}
	store, err := FromContext[S](ctx)
	if err != nil {
		return nil, err
	}
	compare := c.Compare
	if compare == nil {
		compare = func(prev, next M) bool { return ShallowCompare(prev, next) }
	}

	var (
		mu   sync.Mutex
		prev M
	)

	render := func(snap Snapshot[S]) {
		if ctx.Err() != nil {
			return
		}
		next, err := project(snap.State, c.MapState)
		if err != nil {
			return
		}

		mu.Lock()
		changed := compare(prev, next)
		if changed {
			prev = next
		}
		mu.Unlock()
		if !changed {
			return
		}

		if dispatch, err := project(snap.Dispatch, c.MapDispatch); err == nil {
			c.Children(next, dispatch)
		}
	}

	// Hold the lock so no notification can be compared before prev is set
	mu.Lock()
	unsubscribe := store.Subscribe(render)
	snap := store.Snapshot()
	initial, err := project(snap.State, c.MapState)
	if err != nil {
		mu.Unlock()
		unsubscribe()
		return nil, err
	}
	dispatch, err := project(snap.Dispatch, c.MapDispatch)
	if err != nil {
		mu.Unlock()
		unsubscribe()
		return nil, err
	}
	prev = initial
	mu.Unlock()

	stop := context.AfterFunc(ctx, unsubscribe)
	c.Children(initial, dispatch)

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			unsubscribe()
		})
	}, nil
}

// project applies fn, or converts v to To when fn is nil
func project[From, To any](v From, fn func(From) To) (To, error) {
	if fn != nil {
		return fn(v), nil
	}
	if to, ok := any(v).(To); ok {
		return to, nil
	}
	var zero To
	if any(v) == nil {
		return zero, nil
	}
	return zero, fmt.Errorf("%w: %T is not %v", ErrProjection, v, reflect.TypeFor[To]())
}
