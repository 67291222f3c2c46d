package fsm

import (
	"context"
	"errors"
	"sync"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// buildEvents converts a lifecycle into looplab/fsm EventDesc format.
// Transitions with the same event and destination are merged into a single
// EventDesc with multiple source states (e.g., vacate from OCCUPIED and
// AVAILABLE both land on AVAILABLE).
func buildEvents(lc domain.Lifecycle) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range lc.Transitions {
		k := key{event: string(t.Event), dst: t.Dst}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], t.Src)
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM per Apply call, initialized with the entity's
// current state, since looplab/fsm tracks the current state internally.
type Validator struct {
	mu     sync.Mutex
	events map[string][]loopfsm.EventDesc
}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{events: make(map[string][]loopfsm.EventDesc)}
}

func (v *Validator) eventsFor(lc domain.Lifecycle) []loopfsm.EventDesc {
	v.mu.Lock()
	defer v.mu.Unlock()
	ev, ok := v.events[lc.Name]
	if !ok {
		ev = buildEvents(lc)
		v.events[lc.Name] = ev
	}
	return ev
}

// Apply checks if the event is valid from the current status of lc and
// returns the destination status. A declared self-transition returns current
// unchanged. Returns a domain.TransitionError if the transition is not allowed.
func (v *Validator) Apply(ctx context.Context, lc domain.Lifecycle, current string, event domain.Event) (string, error) {
	machine := loopfsm.NewFSM(current, v.eventsFor(lc), nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &noTransition) && noTransition.Err == nil {
			return current, nil
		}
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Lifecycle: lc.Name,
				Event:     event,
				Current:   current,
			}
		}
		return "", err
	}

	return machine.Current(), nil
}
