// Package simplestate is a small shared-state store with composable reducers,
// vetoable middleware and context-scoped consumers.
//
// # Stores
//
// A store holds one state value. Reducers compute the next state and return
// Unchanged when they do not handle an action:
//
//	type Counter struct{ Count int }
//
//	inc := simplestate.On("INC", func(s Counter, _ simplestate.Action) Counter {
//	    return Counter{Count: s.Count + 1}
//	})
//
//	store := simplestate.NewStore(simplestate.Config[Counter]{
//	    Reducers: []simplestate.Reducer[Counter]{inc},
//	})
//	store.Dispatch(simplestate.NewAction("INC"))
//
// Reducers run in order and each one sees the state returned by the previous
// one.
//
// # Middleware
//
// Middleware runs before the reducers and may Veto an action. It can look at
// the state the reducers would produce through peek:
//
//	atMostOne := func(a simplestate.Action, s Counter, peek simplestate.Peek[Counter]) simplestate.Verdict {
//	    if peek().Count > 1 {
//	        return simplestate.Veto
//	    }
//	    return simplestate.Continue
//	}
//
// The first veto stops the chain; reducers never see a vetoed action.
//
// # Effects
//
// An Effect is dispatched like an action but runs immediately with the
// store's dispatch function and current state, bypassing middleware and
// reducers. Effects are the place for side effects that dispatch their
// outcome:
//
//	n := store.Dispatch(simplestate.Effect[Counter](func(dispatch simplestate.Dispatch, s Counter) any {
//	    if s.Count < 3 {
//	        dispatch(simplestate.NewAction("INC"))
//	    }
//	    return s.Count
//	}))
//
// Dispatch may be called from any goroutine, but never from inside a
// middleware or a reducer.
//
// # Providers and consumers
//
// A Provider renders one child component with its store in the context.
// Components read it with the Use hook, or mount a Consumer that only
// re-renders when its projected state changes:
//
//	p := simplestate.NewProvider(cfg)
//	unmount, err := p.Render(ctx, func(ctx context.Context) {
//	    count, dispatch, _ := simplestate.Use(ctx,
//	        func(s Counter) int { return s.Count },
//	        func(d simplestate.Dispatch) simplestate.Dispatch { return d },
//	    )
//	    _ = dispatch
//	    fmt.Println(count)
//	})
//
// Consumers outside any provider get ErrNoProvider.
package simplestate
