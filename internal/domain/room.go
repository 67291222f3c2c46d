package domain

import "time"

// RoomStatus is the occupancy state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

// Room is a rentable unit inside a branch.
//
// Status is OCCUPIED exactly when an active, non-deleted contract references
// the room, MAINTENANCE exactly while the room is soft-deleted, and AVAILABLE
// otherwise.
type Room struct {
	ID         string
	BranchID   string
	RoomNumber string
	Price      int64 // VND per month
	Area       float64
	Status     RoomStatus
	ImageRef   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time

	// DeletedByBranch is the branch whose cascade put this room in the trash.
	// Empty for rooms deleted on their own.
	DeletedByBranch string
}

// NewRoom creates an AVAILABLE room.
func NewRoom(id, branchID, roomNumber string, price int64, area float64, imageRef string) Room {
	now := time.Now().UTC()
	return Room{
		ID:         id,
		BranchID:   branchID,
		RoomNumber: roomNumber,
		Price:      price,
		Area:       area,
		Status:     RoomAvailable,
		ImageRef:   imageRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Deleted reports whether the room is in the trash.
func (r Room) Deleted() bool { return r.DeletedAt != nil }

// RoomPatch holds optional room field updates. Status is deliberately absent:
// it only changes through lifecycle transitions.
type RoomPatch struct {
	BranchID   *string
	RoomNumber *string
	Price      *int64
	Area       *float64
	ImageRef   *string
}

// Apply copies the set fields onto r.
func (p RoomPatch) Apply(r *Room) {
	if p.BranchID != nil {
		r.BranchID = *p.BranchID
	}
	if p.RoomNumber != nil {
		r.RoomNumber = *p.RoomNumber
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Area != nil {
		r.Area = *p.Area
	}
	if p.ImageRef != nil {
		r.ImageRef = *p.ImageRef
	}
}

// RoomFilter holds optional criteria for listing rooms.
type RoomFilter struct {
	BranchID string
	Status   *RoomStatus
}
