package simplestate

import "log/slog"

// PanicHandler is called when a subscriber panics while being notified
type PanicHandler func(storeID string, version uint64, panicValue any)

// Option configures a store
type Option func(*storeOptions)

type storeOptions struct {
	logger       *slog.Logger
	obs          Observability
	panicHandler PanicHandler
}

// WithLogger sets the logger used for dispatch diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObservability installs lifecycle hooks, such as otel.Observability
func WithObservability(obs Observability) Option {
	return func(o *storeOptions) {
		if obs != nil {
			o.obs = obs
		}
	}
}

// WithPanicHandler sets a function to be called when a subscriber panics.
// Without one, subscriber panics are recovered and logged at error level.
func WithPanicHandler(handler PanicHandler) Option {
	return func(o *storeOptions) {
		o.panicHandler = handler
	}
}

func defaultOptions() storeOptions {
	return storeOptions{
		logger: slog.Default(),
		obs:    nopObservability{},
	}
}
