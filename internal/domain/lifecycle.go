package domain

// Event represents an action that triggers a status transition.
type Event string

const (
	// Room events.
	EventOccupy    Event = "occupy"
	EventVacate    Event = "vacate"
	EventRetire    Event = "retire"
	EventReinstate Event = "reinstate"

	// Contract events.
	EventTerminate Event = "terminate"

	// Invoice events.
	EventPay    Event = "pay"
	EventReopen Event = "reopen"
)

// Transition defines a valid status change: an event moves an entity from Src to Dst.
// A transition whose Src equals Dst is an accepted no-op.
type Transition struct {
	Event Event
	Src   string
	Dst   string
}

// Lifecycle names a set of transitions for one entity type.
type Lifecycle struct {
	Name        string
	Transitions []Transition
}

// RoomLifecycle governs room occupancy. Vacate is accepted from any live
// status so that terminating or deleting a contract always frees the room.
var RoomLifecycle = Lifecycle{
	Name: "room",
	Transitions: []Transition{
		{Event: EventOccupy, Src: string(RoomAvailable), Dst: string(RoomOccupied)},
		{Event: EventVacate, Src: string(RoomOccupied), Dst: string(RoomAvailable)},
		{Event: EventVacate, Src: string(RoomAvailable), Dst: string(RoomAvailable)},
		{Event: EventRetire, Src: string(RoomAvailable), Dst: string(RoomMaintenance)},
		{Event: EventReinstate, Src: string(RoomMaintenance), Dst: string(RoomAvailable)},
	},
}

// ContractLifecycle governs leases: ACTIVE → TERMINATED. Terminating twice is a no-op.
var ContractLifecycle = Lifecycle{
	Name: "contract",
	Transitions: []Transition{
		{Event: EventTerminate, Src: string(ContractActive), Dst: string(ContractTerminated)},
		{Event: EventTerminate, Src: string(ContractTerminated), Dst: string(ContractTerminated)},
	},
}

// InvoiceLifecycle governs payment status.
var InvoiceLifecycle = Lifecycle{
	Name: "invoice",
	Transitions: []Transition{
		{Event: EventPay, Src: string(InvoiceUnpaid), Dst: string(InvoicePaid)},
		{Event: EventReopen, Src: string(InvoicePaid), Dst: string(InvoiceUnpaid)},
	},
}

// Events returns the distinct events of the lifecycle in declaration order.
func (l Lifecycle) Events() []Event {
	seen := make(map[Event]bool)
	var out []Event
	for _, t := range l.Transitions {
		if !seen[t.Event] {
			seen[t.Event] = true
			out = append(out, t.Event)
		}
	}
	return out
}
