// Command counter runs a counter store under a provider, dispatches a number
// of increments and prints the final count.
//
// Usage:
//
//	counter [config.yaml]
//
// Settings can be overridden with SIMPLESTATE_ environment variables, for
// example SIMPLESTATE_COUNTER_INCREMENTS=5.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/do/v2"
	"golang.org/x/time/rate"

	"github.com/jilio/simplestate"
	"github.com/jilio/simplestate/internal/config"
	"github.com/jilio/simplestate/internal/logging"
	"github.com/jilio/simplestate/internal/telemetry"
	"github.com/jilio/simplestate/middleware"
	"github.com/jilio/simplestate/otel"
)

const telemetryShutdownTimeout = 5 * time.Second

// Counter is the demo state
type Counter struct {
	Count int
}

const actionIncrement = "INC"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts []config.Option
	if len(args) > 0 {
		opts = append(opts, config.WithFile(args[0]))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	ctx = logging.WithLogger(ctx, logger)

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	registerDependencies(injector, stderr)

	providers := do.MustInvoke[*telemetry.Providers](injector)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	provider, err := do.Invoke[*simplestate.Provider[Counter]](injector)
	if err != nil {
		return fmt.Errorf("resolving provider: %w", err)
	}

	final, err := render(ctx, provider, cfg.Counter.Increments, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "count: %d\n", final)
	return nil
}

func registerDependencies(injector *do.RootScope, telemetryOut io.Writer) {
	do.Provide(injector, func(i do.Injector) (*telemetry.Providers, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.Telemetry.Enabled {
			return &telemetry.Providers{}, nil
		}
		return telemetry.New(cfg.Telemetry.ServiceName, telemetryOut)
	})

	do.Provide(injector, func(i do.Injector) ([]simplestate.Middleware[Counter], error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return counterMiddleware(cfg.Counter, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*simplestate.Provider[Counter], error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		providers := do.MustInvoke[*telemetry.Providers](i)
		mws := do.MustInvoke[[]simplestate.Middleware[Counter]](i)

		opts := []simplestate.Option{simplestate.WithLogger(logger)}
		if providers.Tracer != nil {
			obs, err := otel.New(otel.WithTracerProvider(providers.Tracer), otel.WithMeterProvider(providers.Meter))
			if err != nil {
				return nil, fmt.Errorf("creating observability: %w", err)
			}
			opts = append(opts, simplestate.WithObservability(obs))
		}

		return simplestate.NewProvider(simplestate.Config[Counter]{
			InitialState: Counter{Count: cfg.Counter.Initial},
			Reducers:     []simplestate.Reducer[Counter]{incrementReducer()},
			Middleware:   mws,
		}, opts...), nil
	})
}

func incrementReducer() simplestate.Reducer[Counter] {
	return simplestate.On(actionIncrement, func(s Counter, _ simplestate.Action) Counter {
		return Counter{Count: s.Count + 1}
	})
}

func counterMiddleware(cfg config.CounterConfig, logger *slog.Logger) []simplestate.Middleware[Counter] {
	mws := []simplestate.Middleware[Counter]{
		middleware.Logger[Counter](logger),
		middleware.Validate(func(next Counter) error {
			if next.Count > cfg.Max {
				return fmt.Errorf("count %d exceeds max %d", next.Count, cfg.Max)
			}
			return nil
		}, logger),
	}
	if cfg.Rate.PerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Rate.PerSecond), cfg.Rate.Burst)
		mws = append(mws, middleware.Only([]string{actionIncrement}, middleware.RateLimit[Counter](limiter)))
	}
	return mws
}

// render mounts a hook-based child and a consumer, then increments the
// counter n times and returns the final count.
func render(ctx context.Context, provider *simplestate.Provider[Counter], n int, logger *slog.Logger) (int, error) {
	var (
		dispatch simplestate.Dispatch
		hookErr  error
	)

	unmount, err := provider.Render(ctx, func(ctx context.Context) {
		count, d, err := simplestate.Use(ctx,
			func(s Counter) int { return s.Count },
			func(d simplestate.Dispatch) simplestate.Dispatch { return d },
		)
		if err != nil {
			hookErr = err
			return
		}
		dispatch = d
		logging.FromContext(ctx).Debug("rendered", slog.Int("count", count))
	})
	if err != nil {
		return 0, fmt.Errorf("rendering provider: %w", err)
	}
	defer unmount()
	if hookErr != nil {
		return 0, fmt.Errorf("reading store: %w", hookErr)
	}

	var last int
	consumer := &simplestate.Consumer[Counter, Counter, simplestate.Dispatch]{
		Children: func(s Counter, _ simplestate.Dispatch) {
			last = s.Count
			logger.Info("count changed", slog.Int("count", s.Count))
		},
	}
	unmountConsumer, err := consumer.Mount(simplestate.WithStore(ctx, provider.Store()))
	if err != nil {
		return 0, fmt.Errorf("mounting consumer: %w", err)
	}
	defer unmountConsumer()

	for range n {
		dispatch(simplestate.NewAction(actionIncrement))
	}

	if last != provider.Store().State().Count {
		return 0, errors.New("consumer is out of sync with the store")
	}
	return last, nil
}
