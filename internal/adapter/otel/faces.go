package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: TracingFaceMatcher implements domain.FaceMatcher.
var _ domain.FaceMatcher = (*TracingFaceMatcher)(nil)

// TracingFaceMatcher wraps a domain.FaceMatcher with OpenTelemetry tracing.
type TracingFaceMatcher struct {
	next domain.FaceMatcher
}

func NewTracingFaceMatcher(next domain.FaceMatcher) *TracingFaceMatcher {
	return &TracingFaceMatcher{next: next}
}

func (m *TracingFaceMatcher) ExtractFeatures(ctx context.Context, filename string, image []byte) ([]byte, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "FaceMatcher.ExtractFeatures",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("image.size", len(image))),
	)
	defer span.End()

	descriptor, err := m.next.ExtractFeatures(ctx, filename, image)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return descriptor, nil
}

func (m *TracingFaceMatcher) Match(ctx context.Context, filename string, image []byte, candidates []domain.FaceCandidate) (domain.FaceMatch, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "FaceMatcher.Match",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("image.size", len(image)),
			attribute.Int("face.candidates", len(candidates)),
		),
	)
	defer span.End()

	match, err := m.next.Match(ctx, filename, image, candidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.FaceMatch{}, err
	}

	span.SetAttributes(attribute.Bool("face.matched", match.Matched))
	if match.Matched {
		span.SetAttributes(attribute.String("user.id", match.UserID))
	}
	return match, nil
}
