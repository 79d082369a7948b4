// Package middleware provides reusable store middleware.
package middleware

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/time/rate"

	"github.com/jilio/simplestate"
)

// Logger logs every action at debug level and never vetoes
func Logger[S any](logger *slog.Logger) simplestate.Middleware[S] {
	return func(action simplestate.Action, _ S, _ simplestate.Peek[S]) simplestate.Verdict {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "dispatch",
			slog.String("action", action.Type),
			slog.Any("payload", action.Payload),
		)
		return simplestate.Continue
	}
}

// RateLimit vetoes actions once limiter runs out of tokens
func RateLimit[S any](limiter *rate.Limiter) simplestate.Middleware[S] {
	return func(simplestate.Action, S, simplestate.Peek[S]) simplestate.Verdict {
		if !limiter.Allow() {
			return simplestate.Veto
		}
		return simplestate.Continue
	}
}

// VetoIf vetoes actions for which pred returns true
func VetoIf[S any](pred func(action simplestate.Action, state S) bool) simplestate.Middleware[S] {
	return func(action simplestate.Action, state S, _ simplestate.Peek[S]) simplestate.Verdict {
		if pred(action, state) {
			return simplestate.Veto
		}
		return simplestate.Continue
	}
}

// Validate vetoes actions whose resulting state fails check.
// Rejections are logged at warn level when logger is not nil.
func Validate[S any](check func(next S) error, logger *slog.Logger) simplestate.Middleware[S] {
	return func(action simplestate.Action, _ S, peek simplestate.Peek[S]) simplestate.Verdict {
		err := check(peek())
		if err == nil {
			return simplestate.Continue
		}
		if logger != nil {
			logger.Warn("action rejected",
				slog.String("action", action.Type),
				slog.Any("error", err),
			)
		}
		return simplestate.Veto
	}
}

// Only applies mw to actions whose type is listed; other actions continue
func Only[S any](types []string, mw simplestate.Middleware[S]) simplestate.Middleware[S] {
	types = slices.Clone(types)
	return func(action simplestate.Action, state S, peek simplestate.Peek[S]) simplestate.Verdict {
		if !slices.Contains(types, action.Type) {
			return simplestate.Continue
		}
		return mw(action, state, peek)
	}
}
