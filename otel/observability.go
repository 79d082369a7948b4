package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jilio/simplestate"
)

const (
	instrumentationName = "github.com/jilio/simplestate"
)

// Observability implements simplestate.Observability using OpenTelemetry
type Observability struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	dispatchCounter  metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	vetoCounter      metric.Int64Counter
	panicCounter     metric.Int64Counter
	effectCounter    metric.Int64Counter
}

// Option configures the Observability
type Option func(*Observability)

// WithTracerProvider sets a custom tracer provider
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *Observability) {
		o.tracer = provider.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets a custom meter provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Observability) {
		o.meter = provider.Meter(instrumentationName)
	}
}

// New creates a new OpenTelemetry observability implementation
func New(opts ...Option) (*Observability, error) {
	obs := &Observability{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(obs)
	}

	var err error

	obs.dispatchCounter, err = obs.meter.Int64Counter(
		"simplestate.dispatch.count",
		metric.WithDescription("Number of actions dispatched"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	obs.dispatchDuration, err = obs.meter.Float64Histogram(
		"simplestate.dispatch.duration",
		metric.WithDescription("Time spent in middleware and reducers"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	obs.vetoCounter, err = obs.meter.Int64Counter(
		"simplestate.dispatch.vetoes",
		metric.WithDescription("Number of actions vetoed by middleware"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	obs.panicCounter, err = obs.meter.Int64Counter(
		"simplestate.dispatch.panics",
		metric.WithDescription("Number of dispatches aborted by a panic"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	obs.effectCounter, err = obs.meter.Int64Counter(
		"simplestate.effect.count",
		metric.WithDescription("Number of effects run"),
		metric.WithUnit("{effect}"),
	)
	if err != nil {
		return nil, err
	}

	return obs, nil
}

type attrsKey struct{}

// OnDispatchStart starts a dispatch span and counts the action
func (o *Observability) OnDispatchStart(ctx context.Context, storeID, actionType string) context.Context {
	attrs := []attribute.KeyValue{
		attribute.String("store.id", storeID),
		attribute.String("action.type", actionType),
	}

	ctx, _ = o.tracer.Start(ctx, "simplestate.dispatch: "+actionType,
		trace.WithAttributes(attrs...),
	)

	o.dispatchCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Keep attributes for OnDispatchComplete, which only gets the context
	return context.WithValue(ctx, attrsKey{}, attrs)
}

// OnDispatchComplete records the outcome and ends the dispatch span
func (o *Observability) OnDispatchComplete(ctx context.Context, outcome simplestate.Outcome, duration time.Duration) {
	span := trace.SpanFromContext(ctx)

	attrs, _ := ctx.Value(attrsKey{}).([]attribute.KeyValue)
	attrs = append(attrs[:len(attrs):len(attrs)], attribute.String("outcome", outcome.String()))
	opt := metric.WithAttributes(attrs...)

	durationMs := float64(duration.Microseconds()) / 1000
	o.dispatchDuration.Record(ctx, durationMs, opt)

	span.SetAttributes(attribute.String("outcome", outcome.String()))
	switch outcome {
	case simplestate.Vetoed:
		o.vetoCounter.Add(ctx, 1, opt)
		span.SetStatus(codes.Ok, "")
		span.AddEvent("vetoed")
	case simplestate.Panicked:
		o.panicCounter.Add(ctx, 1, opt)
		span.SetStatus(codes.Error, "panic in middleware or reducer")
	default:
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// OnEffect counts an effect run
func (o *Observability) OnEffect(ctx context.Context, storeID string) {
	o.effectCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("store.id", storeID)),
	)
}

// Ensure Observability implements simplestate.Observability
var _ simplestate.Observability = (*Observability)(nil)
