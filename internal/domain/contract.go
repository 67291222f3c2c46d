package domain

import "time"

// ContractStatus is the lease state.
type ContractStatus string

const (
	ContractActive     ContractStatus = "ACTIVE"
	ContractTerminated ContractStatus = "TERMINATED"
)

// Contract is a lease binding a tenant to a room.
type Contract struct {
	ID           string
	RoomID       string
	UserID       string
	StartDate    time.Time
	EndDate      time.Time
	Deposit      int64
	Status       ContractStatus
	ScanImageRef string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewContract creates an ACTIVE contract.
func NewContract(id, roomID, userID string, start, end time.Time, deposit int64, scanImageRef string) Contract {
	now := time.Now().UTC()
	return Contract{
		ID:           id,
		RoomID:       roomID,
		UserID:       userID,
		StartDate:    start,
		EndDate:      end,
		Deposit:      deposit,
		Status:       ContractActive,
		ScanImageRef: scanImageRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Deleted reports whether the contract is in the trash.
func (c Contract) Deleted() bool { return c.DeletedAt != nil }

// Occupies reports whether the contract, as stored, holds its room.
func (c Contract) Occupies() bool { return c.Status == ContractActive && !c.Deleted() }

// ContractPatch holds optional plain-field updates.
type ContractPatch struct {
	StartDate    *time.Time
	EndDate      *time.Time
	Deposit      *int64
	ScanImageRef *string
}

// Apply copies the set fields onto c.
func (p ContractPatch) Apply(c *Contract) {
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Deposit != nil {
		c.Deposit = *p.Deposit
	}
	if p.ScanImageRef != nil {
		c.ScanImageRef = *p.ScanImageRef
	}
}
