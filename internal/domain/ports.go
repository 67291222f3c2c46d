package domain

import (
	"context"
	"io"
	"time"
)

// View selects rows by their soft-delete state.
type View int

const (
	ViewActive View = iota // deleted_at IS NULL
	ViewTrash              // deleted_at IS NOT NULL
	ViewAny
)

// Recoverable is the persistence surface shared by every soft-deletable
// entity. Get returns a NotFoundError when the id does not resolve inside the
// requested view.
type Recoverable[T any] interface {
	Get(ctx context.Context, id string, view View) (T, error)
	List(ctx context.Context, view View) ([]T, error)
	SetDeleted(ctx context.Context, id string, at *time.Time) error
	Delete(ctx context.Context, id string) error
}

// BranchRepository defines the persistence contract for branches.
type BranchRepository interface {
	Recoverable[Branch]
	Create(ctx context.Context, b Branch) error
	Update(ctx context.Context, b Branch) error
}

// RoomRepository defines the persistence contract for rooms.
type RoomRepository interface {
	Recoverable[Room]
	Create(ctx context.Context, r Room) error
	Update(ctx context.Context, r Room) error
	Find(ctx context.Context, filter RoomFilter) ([]Room, error)
	ListByBranch(ctx context.Context, branchID string, view View) ([]Room, error)
	NumberTaken(ctx context.Context, branchID, roomNumber, exceptID string) (bool, error)

	// CompareAndSetStatus writes to only when the stored status equals from.
	// It reports whether a row changed.
	CompareAndSetStatus(ctx context.Context, id string, from, to RoomStatus) (bool, error)

	// SetDeletedByBranch records (or clears, with "") the cascade marker.
	SetDeletedByBranch(ctx context.Context, id, branchID string) error
	Referenced(ctx context.Context, id string) (bool, error)
}

// ContractRepository defines the persistence contract for contracts.
type ContractRepository interface {
	Recoverable[Contract]
	Create(ctx context.Context, c Contract) error
	Update(ctx context.Context, c Contract) error
	Find(ctx context.Context, scope Scope) ([]Contract, error)

	// ActiveForRoom returns the non-deleted ACTIVE contract of a room.
	ActiveForRoom(ctx context.Context, roomID string) (Contract, error)
	HeldBy(ctx context.Context, userID, roomID string) (bool, error)
	CountByUser(ctx context.Context, userID string, activeOnly bool) (int, error)
}

// InvoiceRepository defines the persistence contract for invoices.
type InvoiceRepository interface {
	Recoverable[Invoice]
	Create(ctx context.Context, inv Invoice) error
	Update(ctx context.Context, inv Invoice) error
	Find(ctx context.Context, scope Scope) ([]Invoice, error)
	LatestReadings(ctx context.Context, roomID string) (LatestReadings, error)
	Unpaid(ctx context.Context) ([]Invoice, error)
}

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	Recoverable[User]
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	WithFaces(ctx context.Context) ([]User, error)
}

// AccessLogRepository records gate access attempts.
type AccessLogRepository interface {
	Create(ctx context.Context, l AccessLog) error
	List(ctx context.Context, limit int) ([]AccessLog, error)
}

// StatsRepository serves read-only aggregates.
type StatsRepository interface {
	Counts(ctx context.Context) (Counts, error)
	InvoiceSum(ctx context.Context, status InvoiceStatus, year, month int) (int64, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Branches() BranchRepository
	Rooms() RoomRepository
	Contracts() ContractRepository
	Invoices() InvoiceRepository
	Users() UserRepository
	AccessLogs() AccessLogRepository
	Stats() StatsRepository
}

// Store is the transactional persistence boundary. Atomically runs fn inside
// one transaction: every write fn performs commits together, or none does.
type Store interface {
	Repositories
	Atomically(ctx context.Context, fn func(Repositories) error) error
}

// TransitionValidator checks whether an event is allowed from the current
// status of a lifecycle and returns the resulting status.
type TransitionValidator interface {
	Apply(ctx context.Context, lc Lifecycle, current string, event Event) (string, error)
}

// Notifier dispatches billing messages. Implementations must not block on
// delivery.
type Notifier interface {
	Notify(ctx context.Context, notice BillingNotice) error
}

// FaceCandidate is a stored descriptor offered to the matcher.
type FaceCandidate struct {
	UserID     string
	Descriptor []byte
}

// FaceMatch is the decision returned by the biometric service.
type FaceMatch struct {
	Matched bool
	UserID  string
}

// FaceMatcher is the remote biometric service.
type FaceMatcher interface {
	ExtractFeatures(ctx context.Context, filename string, image []byte) ([]byte, error)
	Match(ctx context.Context, filename string, image []byte, candidates []FaceCandidate) (FaceMatch, error)
}

// FileStore persists a binary and returns an opaque reference URL.
type FileStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Message is an outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Cache is a byte cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
