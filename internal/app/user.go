package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/neomorfeo/rentiq/internal/domain"
)

const minPasswordLength = 6

// UserInput holds the fields of a new account.
type UserInput struct {
	Email        string
	Password     string
	FullName     string
	Phone        string
	IdentityCard string
	Role         domain.Role
}

// UserService manages accounts and verifies credentials.
type UserService struct {
	*Trash[domain.User]
	store    domain.Store
	hashCost int
	logger   *zap.Logger
}

// NewUserService creates a service with the given adapters.
func NewUserService(store domain.Store, logger *zap.Logger) *UserService {
	s := &UserService{
		store:    store,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
	s.Trash = NewTrash(store,
		func(r domain.Repositories) domain.Recoverable[domain.User] { return r.Users() },
		TrashHooks[domain.User]{
			BeforeDelete:  s.checkNoActiveContract,
			BeforeRestore: s.checkEmailFree,
			BeforePurge:   s.checkNoContracts,
		})
	return s
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// Register creates a TENANT account.
func (s *UserService) Register(ctx context.Context, in UserInput) (domain.User, error) {
	in.Role = domain.RoleTenant
	return s.Create(ctx, in)
}

// Create adds an account with a unique email.
func (s *UserService) Create(ctx context.Context, in UserInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, &domain.InvalidInputError{Field: "email", Reason: "is not a valid address"}
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, &domain.InvalidInputError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if in.Role == "" {
		in.Role = domain.RoleTenant
	}
	if !in.Role.Valid() {
		return domain.User{}, &domain.InvalidInputError{Field: "role", Reason: fmt.Sprintf("unknown role %q", in.Role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}
	id, err := generateID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generating user id: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           id,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        in.Phone,
		IdentityCard: in.IdentityCard,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Atomically(ctx, func(repos domain.Repositories) error {
		if err := ensureEmailFree(ctx, repos, u); err != nil {
			return err
		}
		return repos.Users().Create(ctx, u)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user created", zap.String("user.id", u.ID), zap.String("user.role", string(u.Role)))
	return u, nil
}

// Authenticate checks credentials and returns the principal.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.Principal, error) {
	u, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
		}
		return domain.Principal{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.Principal{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	}
	return u.Principal(), nil
}

// Get returns a live account the principal may see: its own, or any for an
// administrator.
func (s *UserService) Get(ctx context.Context, id string, p domain.Principal) (domain.User, error) {
	if !p.IsAdmin() && p.ID != id {
		return domain.User{}, &domain.ForbiddenError{Entity: "user", ID: id}
	}
	return s.store.Users().Get(ctx, id, domain.ViewActive)
}

// List returns live accounts.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.Users().List(ctx, domain.ViewActive)
}

// Update applies a patch. Only administrators may change roles or edit other
// accounts.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch, p domain.Principal) (domain.User, error) {
	if !p.IsAdmin() {
		if p.ID != id {
			return domain.User{}, &domain.ForbiddenError{Entity: "user", ID: id}
		}
		if patch.Role != nil {
			return domain.User{}, &domain.ForbiddenError{Entity: "role of user", ID: id}
		}
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.User{}, &domain.InvalidInputError{Field: "role", Reason: fmt.Sprintf("unknown role %q", *patch.Role)}
	}

	var hash string
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return domain.User{}, &domain.InvalidInputError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
		}
		b, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.hashCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hashing password: %w", err)
		}
		hash = string(b)
	}

	var u domain.User
	err := s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		u, err = repos.Users().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}
		if patch.FullName != nil {
			u.FullName = strings.TrimSpace(*patch.FullName)
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
		if patch.IdentityCard != nil {
			u.IdentityCard = *patch.IdentityCard
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		return repos.Users().Update(ctx, u)
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// SetFaceDescriptor stores an opaque biometric vector on a live account.
func (s *UserService) SetFaceDescriptor(ctx context.Context, id string, descriptor []byte) error {
	return s.store.Atomically(ctx, func(repos domain.Repositories) error {
		u, err := repos.Users().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}
		u.FaceDescriptor = descriptor
		return repos.Users().Update(ctx, u)
	})
}

func (s *UserService) checkNoActiveContract(ctx context.Context, repos domain.Repositories, u domain.User) error {
	n, err := repos.Contracts().CountByUser(ctx, u.ID, true)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("user %q holds %d active contracts", u.Email, n)}
	}
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, repos domain.Repositories, u domain.User) error {
	return ensureEmailFree(ctx, repos, u)
}

func (s *UserService) checkNoContracts(ctx context.Context, repos domain.Repositories, u domain.User) error {
	n, err := repos.Contracts().CountByUser(ctx, u.ID, false)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("user %q is referenced by %d contracts", u.Email, n)}
	}
	return nil
}

func ensureEmailFree(ctx context.Context, repos domain.Repositories, u domain.User) error {
	taken, err := repos.Users().EmailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return &domain.ConflictError{Reason: fmt.Sprintf("email %q is already registered", u.Email)}
	}
	return nil
}
