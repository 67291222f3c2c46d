package domain

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTenant Role = "TENANT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleTenant }

// User is an account: the administrator or a tenant.
type User struct {
	ID           string
	Email        string
	FullName     string
	Phone        string
	IdentityCard string
	Role         Role
	PasswordHash string

	// FaceDescriptor is an opaque feature vector produced by the biometric
	// service. It is stored and handed back, never interpreted.
	FaceDescriptor []byte

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Deleted reports whether the user is in the trash.
func (u User) Deleted() bool { return u.DeletedAt != nil }

// Principal returns the authenticated identity of u.
func (u User) Principal() Principal { return Principal{ID: u.ID, Role: u.Role} }

// UserPatch holds optional user updates. PasswordHash is set by the service
// after hashing.
type UserPatch struct {
	FullName     *string
	Phone        *string
	IdentityCard *string
	Role         *Role
	Password     *string
}

// AccessLog records a gate access attempt.
type AccessLog struct {
	ID        string
	UserID    string
	Method    string
	Status    string
	Note      string
	CreatedAt time.Time
}
