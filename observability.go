package simplestate

import (
	"context"
	"time"
)

// Outcome describes how a dispatched action ended
type Outcome int

const (
	// Committed means the action passed middleware and a new snapshot was stored
	Committed Outcome = iota
	// Vetoed means a middleware dropped the action
	Vetoed
	// Panicked means a middleware or reducer panicked
	Panicked
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Vetoed:
		return "vetoed"
	case Panicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Observability receives store lifecycle callbacks.
// See the otel package for an OpenTelemetry implementation.
type Observability interface {
	// OnDispatchStart is called before middleware runs for an action
	OnDispatchStart(ctx context.Context, storeID, actionType string) context.Context

	// OnDispatchComplete is called once the action was committed, vetoed or
	// panicked
	OnDispatchComplete(ctx context.Context, outcome Outcome, duration time.Duration)

	// OnEffect is called when an effect message is run
	OnEffect(ctx context.Context, storeID string)
}

type nopObservability struct{}

func (nopObservability) OnDispatchStart(ctx context.Context, _, _ string) context.Context {
	return ctx
}

func (nopObservability) OnDispatchComplete(context.Context, Outcome, time.Duration) {}

func (nopObservability) OnEffect(context.Context, string) {}
