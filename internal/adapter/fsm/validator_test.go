package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/neomorfeo/rentiq/internal/adapter/fsm"
	"github.com/neomorfeo/rentiq/internal/domain"
)

var lifecycles = []domain.Lifecycle{
	domain.RoomLifecycle,
	domain.ContractLifecycle,
	domain.InvoiceLifecycle,
}

func TestValidator_AllTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, lc := range lifecycles {
		for _, tr := range lc.Transitions {
			dst, err := v.Apply(ctx, lc, tr.Src, tr.Event)
			if err != nil {
				t.Errorf("%s: Apply(%q, %q) unexpected error: %v", lc.Name, tr.Src, tr.Event, err)
				continue
			}
			if dst != tr.Dst {
				t.Errorf("%s: Apply(%q, %q) = %q, want %q", lc.Name, tr.Src, tr.Event, dst, tr.Dst)
			}
		}
	}
}

func TestValidator_InvalidTransition(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// An occupied room cannot be occupied again.
	_, err := v.Apply(ctx, domain.RoomLifecycle, string(domain.RoomOccupied), domain.EventOccupy)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventOccupy {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventOccupy)
	}
	if trErr.Current != string(domain.RoomOccupied) {
		t.Errorf("current = %q, want %q", trErr.Current, domain.RoomOccupied)
	}
	if trErr.Lifecycle != "room" {
		t.Errorf("lifecycle = %q, want room", trErr.Lifecycle)
	}
}

func TestValidator_UnknownEvent(t *testing.T) {
	v := adapter.New()

	_, err := v.Apply(context.Background(), domain.InvoiceLifecycle, string(domain.InvoiceUnpaid), domain.EventOccupy)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestValidator_SelfTransitionIsNoop(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	got, err := v.Apply(ctx, domain.ContractLifecycle, string(domain.ContractTerminated), domain.EventTerminate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != string(domain.ContractTerminated) {
		t.Errorf("got %q, want %q", got, domain.ContractTerminated)
	}

	got, err = v.Apply(ctx, domain.RoomLifecycle, string(domain.RoomAvailable), domain.EventVacate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != string(domain.RoomAvailable) {
		t.Errorf("got %q, want %q", got, domain.RoomAvailable)
	}
}

func TestValidator_RoomRoundTrip(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	steps := []struct {
		from  domain.RoomStatus
		event domain.Event
		want  domain.RoomStatus
	}{
		{domain.RoomAvailable, domain.EventOccupy, domain.RoomOccupied},
		{domain.RoomOccupied, domain.EventVacate, domain.RoomAvailable},
		{domain.RoomAvailable, domain.EventRetire, domain.RoomMaintenance},
		{domain.RoomMaintenance, domain.EventReinstate, domain.RoomAvailable},
	}

	for _, step := range steps {
		got, err := v.Apply(ctx, domain.RoomLifecycle, string(step.from), step.event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", step.from, step.event, err)
		}
		if got != string(step.want) {
			t.Errorf("Apply(%q, %q) = %q, want %q", step.from, step.event, got, step.want)
		}
	}
}
