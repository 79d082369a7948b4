package simplestate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config is the fixed configuration of a store
type Config[S any] struct {
	// InitialState becomes the state of the first snapshot
	InitialState S
	// Reducers run in order for every committed action; may be empty
	Reducers []Reducer[S]
	// Middleware runs in order before every action and may veto it
	Middleware []Middleware[S]
}

// Store owns a single state cell. State changes only through Dispatch, and
// every committed action publishes a new Snapshot to subscribers.
//
// Dispatch is safe for concurrent use; middleware and reducers of concurrent
// dispatches run one at a time, in lock order. Subscribers and effects may
// dispatch freely since they run outside that phase, and a subscriber may be
// notified from several goroutines at once. Calling Dispatch from inside a
// reducer or a middleware deadlocks. Reading the state is safe from any
// goroutine.
type Store[S any] struct {
	id         string
	reduce     func(S, Action) S
	middleware []Middleware[S]
	binding    binding[S]
	dispatch   Dispatch
	mu         sync.Mutex // Held while middleware and reducers run

	logger       *slog.Logger
	obs          Observability
	panicHandler PanicHandler
}

// NewStore creates a store. The reducer and middleware lists are copied and
// cannot be changed afterwards.
func NewStore[S any](cfg Config[S], opts ...Option) *Store[S] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[S]{
		id:           uuid.NewString(),
		reduce:       Compose(cfg.Reducers...),
		middleware:   slices.Clone(cfg.Middleware),
		logger:       o.logger,
		obs:          o.obs,
		panicHandler: o.panicHandler,
	}
	s.dispatch = s.Dispatch
	s.binding.current.Store(&Snapshot[S]{
		State:    cfg.InitialState,
		Dispatch: s.dispatch,
	})
	return s
}

// ID returns the unique identifier of the store
func (s *Store[S]) ID() string {
	return s.id
}

// State returns the current state
func (s *Store[S]) State() S {
	return s.binding.load().State
}

// Snapshot returns the current snapshot
func (s *Store[S]) Snapshot() Snapshot[S] {
	return *s.binding.load()
}

// Subscribe registers fn to be called with every new snapshot.
// The returned function removes the subscription and is safe to call more
// than once.
func (s *Store[S]) Subscribe(fn func(Snapshot[S])) (unsubscribe func()) {
	return s.binding.subscribe(fn)
}

// HasSubscribers returns true if anything is listening to the store
func (s *Store[S]) HasSubscribers() bool {
	return s.binding.count() > 0
}

// Dispatch sends msg to the store. It is the same function that is handed
// to effects and published in snapshots.
func (s *Store[S]) Dispatch(msg Message) any {
	return s.DispatchContext(context.Background(), msg)
}

// DispatchContext sends msg to the store with a context for observability.
//
// An Effect is invoked with the store's dispatch function and the current
// state, and its result is returned. An Action runs through middleware and,
// unless vetoed, through the reducers; the result is nil.
func (s *Store[S]) DispatchContext(ctx context.Context, msg Message) any {
	switch m := msg.(type) {
	case Action:
		s.dispatchAction(ctx, m)
		return nil
	case *Action:
		if m != nil {
			s.dispatchAction(ctx, *m)
			return nil
		}
	case Effect[S]:
		if m != nil {
			s.obs.OnEffect(ctx, s.id)
			return m(s.dispatch, s.State())
		}
	}
	panic(fmt.Errorf("%w: %T", ErrUnknownMessage, msg))
}

func (s *Store[S]) dispatchAction(ctx context.Context, action Action) {
	snap, ok := s.commit(ctx, action)
	if !ok {
		return
	}
	s.binding.publish(*snap, func(r any) {
		s.subscriberPanicked(snap.Version, r)
	})
}

// commit runs middleware and reducers under the dispatch lock
func (s *Store[S]) commit(ctx context.Context, action Action) (*Snapshot[S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	ctx = s.obs.OnDispatchStart(ctx, s.id, action.Type)
	outcome := Panicked
	defer func() {
		s.obs.OnDispatchComplete(ctx, outcome, time.Since(start))
	}()

	cur := s.binding.load()
	next := &preview[S]{compute: func() S {
		return s.reduce(cur.State, action)
	}}

	if i := runChain(s.middleware, action, cur.State, next.peek); i >= 0 {
		outcome = Vetoed
		s.logger.DebugContext(ctx, "action vetoed",
			slog.String("store_id", s.id),
			slog.String("action", action.Type),
			slog.Int("middleware", i),
		)
		return nil, false
	}

	snap := &Snapshot[S]{
		State:    next.peek(),
		Dispatch: s.dispatch,
		Version:  cur.Version + 1,
	}
	s.binding.current.Store(snap)
	outcome = Committed

	s.logger.DebugContext(ctx, "action committed",
		slog.String("store_id", s.id),
		slog.String("action", action.Type),
		slog.Uint64("version", snap.Version),
	)
	return snap, true
}

func (s *Store[S]) subscriberPanicked(version uint64, r any) {
	if s.panicHandler != nil {
		s.panicHandler(s.id, version, r)
		return
	}
	s.logger.Error("subscriber panicked",
		slog.String("store_id", s.id),
		slog.Uint64("version", version),
		slog.Any("panic", r),
	)
}
