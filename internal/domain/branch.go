package domain

import "time"

// Branch is a physical rental site grouping rooms.
type Branch struct {
	ID          string
	Name        string
	Address     string
	ManagerName string
	ImageRef    string
	RoomCount   int // Populated on reads; not persisted.
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// NewBranch creates a live branch.
func NewBranch(id, name, address, managerName, imageRef string) Branch {
	now := time.Now().UTC()
	return Branch{
		ID:          id,
		Name:        name,
		Address:     address,
		ManagerName: managerName,
		ImageRef:    imageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Deleted reports whether the branch is in the trash.
func (b Branch) Deleted() bool { return b.DeletedAt != nil }

// BranchPatch holds optional branch field updates.
type BranchPatch struct {
	Name        *string
	Address     *string
	ManagerName *string
	ImageRef    *string
}

// Apply copies the set fields onto b.
func (p BranchPatch) Apply(b *Branch) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Address != nil {
		b.Address = *p.Address
	}
	if p.ManagerName != nil {
		b.ManagerName = *p.ManagerName
	}
	if p.ImageRef != nil {
		b.ImageRef = *p.ImageRef
	}
}
