package simplestate

// Verdict is a middleware decision about a pending action
type Verdict int

const (
	// Continue lets the action proceed to the next middleware and then to
	// the reducers.
	Continue Verdict = iota
	// Veto drops the action. No further middleware runs and the state is
	// not updated.
	Veto
)

func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case Veto:
		return "veto"
	default:
		return "unknown"
	}
}

// Peek returns the state the reducer pipeline would produce for the pending
// action, without committing it.
type Peek[S any] func() S

// Middleware inspects an action before it is committed. Middleware must not
// mutate state or action; side effects such as logging are expected.
type Middleware[S any] func(action Action, state S, peek Peek[S]) Verdict

// RunMiddleware runs middlewares left to right and reports whether the action
// may be committed. The first Veto stops the chain.
func RunMiddleware[S any](middlewares []Middleware[S], action Action, state S, peek Peek[S]) bool {
	return runChain(middlewares, action, state, peek) < 0
}

// runChain returns the index of the vetoing middleware, or -1
func runChain[S any](middlewares []Middleware[S], action Action, state S, peek Peek[S]) int {
	for i, mw := range middlewares {
		if mw(action, state, peek) == Veto {
			return i
		}
	}
	return -1
}

// preview lazily computes the pending state at most once per dispatch
type preview[S any] struct {
	compute func() S
	value   S
	done    bool
}

func (p *preview[S]) peek() S {
	if !p.done {
		p.value = p.compute()
		p.done = true
	}
	return p.value
}
