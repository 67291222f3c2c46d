package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Access log values written by face verification.
const (
	AccessMethodFace = "FACE_ID"
	AccessGranted    = "SUCCESS"
	AccessDenied     = "FAILED"
)

// Verification is the outcome of a gate check.
type Verification struct {
	Matched bool
	User    domain.User
}

// AccessService registers and verifies faces against the remote matcher.
// Remote calls never run inside a database transaction.
type AccessService struct {
	store   domain.Store
	users   *UserService
	matcher domain.FaceMatcher
	logger  *zap.Logger
}

// NewAccessService creates a service with the given adapters.
func NewAccessService(store domain.Store, users *UserService, matcher domain.FaceMatcher, logger *zap.Logger) *AccessService {
	return &AccessService{store: store, users: users, matcher: matcher, logger: logger}
}

// RegisterFace extracts a descriptor from image and stores it on the user.
func (s *AccessService) RegisterFace(ctx context.Context, userID, filename string, image []byte) error {
	if len(image) == 0 {
		return &domain.InvalidInputError{Field: "file", Reason: "image is empty"}
	}
	if _, err := s.store.Users().Get(ctx, userID, domain.ViewActive); err != nil {
		return err
	}

	descriptor, err := s.matcher.ExtractFeatures(ctx, filename, image)
	if err != nil {
		return fmt.Errorf("extracting face features: %w", err)
	}
	if err := s.users.SetFaceDescriptor(ctx, userID, descriptor); err != nil {
		return err
	}

	s.logger.Info("face registered", zap.String("user.id", userID))
	return nil
}

// Verify matches image against every registered face and logs the attempt.
func (s *AccessService) Verify(ctx context.Context, filename string, image []byte) (Verification, error) {
	if len(image) == 0 {
		return Verification{}, &domain.InvalidInputError{Field: "file", Reason: "image is empty"}
	}

	users, err := s.store.Users().WithFaces(ctx)
	if err != nil {
		return Verification{}, err
	}
	if len(users) == 0 {
		return Verification{}, &domain.InvalidInputError{Reason: "no faces are registered"}
	}

	candidates := make([]domain.FaceCandidate, 0, len(users))
	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		candidates = append(candidates, domain.FaceCandidate{UserID: u.ID, Descriptor: u.FaceDescriptor})
		byID[u.ID] = u
	}

	match, err := s.matcher.Match(ctx, filename, image, candidates)
	if err != nil {
		return Verification{}, fmt.Errorf("matching face: %w", err)
	}

	result := Verification{}
	entry := domain.AccessLog{Method: AccessMethodFace, Status: AccessDenied, CreatedAt: time.Now().UTC()}
	if u, ok := byID[match.UserID]; match.Matched && ok {
		result = Verification{Matched: true, User: u}
		entry.UserID = u.ID
		entry.Status = AccessGranted
	}

	if entry.ID, err = generateID(); err != nil {
		return Verification{}, fmt.Errorf("generating access log id: %w", err)
	}
	if err := s.store.AccessLogs().Create(ctx, entry); err != nil {
		s.logger.Warn("writing access log", zap.Error(err))
	}
	return result, nil
}

// Logs returns the most recent access attempts.
func (s *AccessService) Logs(ctx context.Context, limit int) ([]domain.AccessLog, error) {
	return s.store.AccessLogs().List(ctx, limit)
}
