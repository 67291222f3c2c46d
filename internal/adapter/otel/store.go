package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: TracingStore implements domain.Store.
var _ domain.Store = (*TracingStore)(nil)

// TracingStore wraps a domain.Store and records a span per transaction.
// Individual statements are traced by the otelsql driver underneath.
type TracingStore struct {
	domain.Store
}

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(store domain.Store) *TracingStore {
	return &TracingStore{Store: store}
}

func (s *TracingStore) Atomically(ctx context.Context, fn func(domain.Repositories) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Store.Atomically")
	defer span.End()

	err := s.Store.Atomically(ctx, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
