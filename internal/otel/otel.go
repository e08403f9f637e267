package otel

import (
	"context"
	"sync"

	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("typegraph")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer       trace.Tracer
	resolveSpans sync.Map // op id -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.ResolveStart) {
		_, span := s.tracer.Start(ctx, "typegraph.resolve")
		span.SetAttributes(
			attribute.String("typegraph.abstract_type", e.AbstractType),
		)
		s.resolveSpans.Store(e.OpID, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.TypeMismatch) {
		v, ok := s.resolveSpans.Load(e.OpID)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.AddEvent("typegraph.type_mismatch", trace.WithAttributes(
			attribute.String("typegraph.resolved", e.Resolved),
			attribute.String("typegraph.conflicting", e.Conflicting),
			attribute.String("typegraph.strategy", string(e.Strategy)),
		))
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		v, ok := s.resolveSpans.LoadAndDelete(e.OpID)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.String("typegraph.variant", e.Variant),
			attribute.String("typegraph.strategy", string(e.Strategy)),
		)
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})
}
