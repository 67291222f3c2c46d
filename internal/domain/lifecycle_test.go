package domain_test

import (
	"slices"
	"testing"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestLifecycle_Events(t *testing.T) {
	got := domain.RoomLifecycle.Events()
	want := []domain.Event{domain.EventOccupy, domain.EventVacate, domain.EventRetire, domain.EventReinstate}
	if !slices.Equal(got, want) {
		t.Errorf("Events() = %v, want %v", got, want)
	}
}

func TestRoomLifecycle_NoOccupyFromMaintenance(t *testing.T) {
	for _, tr := range domain.RoomLifecycle.Transitions {
		if tr.Event == domain.EventOccupy && tr.Src == string(domain.RoomMaintenance) {
			t.Fatal("a room in maintenance must not be occupied")
		}
	}
}
