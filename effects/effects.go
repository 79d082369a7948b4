// Package effects builds simplestate effects for common side-effect patterns.
//
// A call to a flaky dependency can be wrapped in a circuit breaker so that,
// once it keeps failing, the store is told immediately instead of waiting on
// the dependency:
//
//	cb := effects.NewBreaker[Profile]("profile-api", 5, 30*time.Second, logger)
//
//	store.Dispatch(effects.Call[State](ctx, cb, api.FetchProfile,
//	    func(p Profile) simplestate.Message { return simplestate.NewAction("PROFILE_LOADED", p) },
//	    func(err error) simplestate.Message { return simplestate.NewAction("PROFILE_FAILED", err) },
//	))
package effects

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jilio/simplestate"
)

// Batch returns an effect that dispatches msgs in order.
// The effect's result is the number of messages dispatched.
func Batch[S any](msgs ...simplestate.Message) simplestate.Effect[S] {
	return func(dispatch simplestate.Dispatch, _ S) any {
		for _, msg := range msgs {
			dispatch(msg)
		}
		return len(msgs)
	}
}

// Call returns an effect that runs fn through cb and dispatches done with
// its result, or failed with the error. When the breaker is open fn is not
// called and failed receives gobreaker.ErrOpenState.
//
// The effect's result is the error, or nil on success.
func Call[S, T any](
	ctx context.Context,
	cb *gobreaker.CircuitBreaker[T],
	fn func(ctx context.Context) (T, error),
	done func(T) simplestate.Message,
	failed func(error) simplestate.Message,
) simplestate.Effect[S] {
	return func(dispatch simplestate.Dispatch, _ S) any {
		v, err := cb.Execute(func() (T, error) {
			return fn(ctx)
		})
		if err != nil {
			if failed != nil {
				dispatch(failed(err))
			}
			return err
		}
		if done != nil {
			dispatch(done(v))
		}
		return nil
	}
}

// NewBreaker creates a circuit breaker that opens after maxFailures
// consecutive failures and probes again after timeout. State changes are
// logged at warn level.
func NewBreaker[T any](name string, maxFailures uint32, timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker[T] {
	if maxFailures == 0 {
		maxFailures = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}
