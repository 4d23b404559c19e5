package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "foreman"

// StartDispatchSpan starts a span covering one specialist invocation.
func StartDispatchSpan(ctx context.Context, taskID, specialist, skillID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("specialist", specialist),
			attribute.String("skill.id", skillID),
		),
	)
}

// StartDiscoverySpan starts a span covering one registry discovery pass.
func StartDiscoverySpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "discovery")
}
