package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: TracingNotifier implements domain.Notifier.
var _ domain.Notifier = (*TracingNotifier)(nil)

// TracingNotifier wraps a domain.Notifier with OpenTelemetry tracing.
type TracingNotifier struct {
	next domain.Notifier
}

// NewTracingNotifier creates a tracing decorator around the given notifier.
func NewTracingNotifier(next domain.Notifier) *TracingNotifier {
	return &TracingNotifier{next: next}
}

func (n *TracingNotifier) Notify(ctx context.Context, notice domain.BillingNotice) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Notifier.Notify",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("notice.kind", string(notice.Kind)),
			attribute.String("invoice.id", notice.Invoice.ID),
			attribute.String("user.id", notice.Recipient.ID),
		),
	)
	defer span.End()

	err := n.next.Notify(ctx, notice)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
