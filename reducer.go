package simplestate

// Result is the outcome of a single reducer: either the state is left as it
// is, or it is replaced with a new value.
type Result[S any] struct {
	state    S
	replaced bool
}

// Unchanged reports that a reducer does not handle the action
func Unchanged[S any]() Result[S] {
	return Result[S]{}
}

// Replace reports that a reducer produced a new state
func Replace[S any](state S) Result[S] {
	return Result[S]{state: state, replaced: true}
}

// Replaced returns the new state and true, or the zero value and false for
// an unchanged result.
func (r Result[S]) Replaced() (S, bool) {
	return r.state, r.replaced
}

// Reducer computes the next state for an action. Reducers must be pure and
// must not mutate the state they are given.
type Reducer[S any] func(state S, action Action) Result[S]

// Reduce folds reducers left to right over state. Each reducer receives the
// state produced by the ones before it. When no reducer replaces the state
// the original value is returned as is.
func Reduce[S any](reducers []Reducer[S], state S, action Action) S {
	for _, reducer := range reducers {
		if next, ok := reducer(state, action).Replaced(); ok {
			state = next
		}
	}
	return state
}

// Compose returns the reducer pipeline as a single function.
// The reducer list is copied, so later changes to the caller's slice have no
// effect on the returned function.
func Compose[S any](reducers ...Reducer[S]) func(S, Action) S {
	fixed := make([]Reducer[S], len(reducers))
	copy(fixed, reducers)
	return func(state S, action Action) S {
		return Reduce(fixed, state, action)
	}
}

// On returns a reducer that only handles actions of the given type
func On[S any](actionType string, fn func(state S, action Action) S) Reducer[S] {
	return func(state S, action Action) Result[S] {
		if action.Type != actionType {
			return Unchanged[S]()
		}
		return Replace(fn(state, action))
	}
}
