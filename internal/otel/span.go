// Package otel provides OpenTelemetry span helpers shared by the activities service.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for enrollment spans.
// Participant emails are never attached to spans.
const (
	AttrActivityName = attribute.Key("activity.name")
	AttrOperation    = attribute.Key("enrollment.operation")
	AttrOutcome      = attribute.Key("enrollment.outcome")
	AttrChangeID     = attribute.Key("enrollment.change_id")
	AttrResultCount  = attribute.Key("result.count")
)

// EventRejected is added to a span when a request is refused for a reason the
// caller controls, such as a duplicate signup or a full activity
const EventRejected = "enrollment.rejected"

// StartSpan starts a span on tracer, or returns the span already in ctx when tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status description stays generic;
// the error text is only kept in the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

// RecordRejection notes a refused enrollment request without failing the span
func RecordRejection(span trace.Span, outcome string) {
	if span == nil {
		return
	}
	span.SetAttributes(AttrOutcome.String(outcome))
	span.AddEvent(EventRejected, trace.WithAttributes(AttrOutcome.String(outcome)))
}
