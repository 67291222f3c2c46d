package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/rentiq/internal/adapter/otel"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// setupTestTracer installs an in-memory span exporter as the global tracer provider.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func assertAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()
	for _, a := range attrs {
		if string(a.Key) == key {
			if got := a.Value.Emit(); got != want {
				t.Errorf("attribute %s = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %s not found", key)
}

func newTracingStore(t *testing.T) *adapter.TracingStore {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return adapter.NewTracingStore(store)
}

// --- Atomically ---

func TestTracingStore_Atomically_CreatesSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	store := newTracingStore(t)

	err := store.Atomically(context.Background(), func(repos domain.Repositories) error {
		return repos.Branches().Create(context.Background(), domain.NewBranch("b-1", "Central", "", "", ""))
	})
	if err != nil {
		t.Fatalf("Atomically failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "Store.Atomically" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "Store.Atomically")
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("span should not have error status")
	}

	if _, err := store.Branches().Get(context.Background(), "b-1", domain.ViewActive); err != nil {
		t.Errorf("committed branch not readable: %v", err)
	}
}

func TestTracingStore_Atomically_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	store := newTracingStore(t)
	boom := errors.New("boom")

	err := store.Atomically(context.Background(), func(domain.Repositories) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status.Code)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event recorded on span")
	}
}
