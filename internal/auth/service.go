package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lodestar-crm/lodestar-crm/internal/authz"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Unknown user,
// inactive account and wrong password all fail with the same error so
// responses cannot be used to enumerate accounts. Store failures are
// propagated, never folded into a credential failure.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, httpx.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, httpx.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres. Idempotent.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// ResolveIdentity loads the identity for a user ID fresh from the user
// record. Missing or deactivated users resolve to unauthenticated so a
// stale session cannot outlive its account.
func (s *Service) ResolveIdentity(ctx context.Context, userID int64) (*authz.Identity, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrUnauthenticated
		}
		return nil, err
	}
	return IdentityForUser(user)
}

// IdentityForUser builds the request identity from a user record.
func IdentityForUser(user *User) (*authz.Identity, error) {
	if user == nil || !user.IsActive {
		return nil, httpx.ErrUnauthenticated
	}
	role, ok := authz.ParseRole(user.Role)
	if !ok {
		return nil, httpx.ErrUnauthenticated
	}
	var extra []authz.Capability
	for _, raw := range user.ExtraCapabilities {
		if cap, ok := authz.ParseCapability(raw); ok {
			extra = append(extra, cap)
		}
	}
	return &authz.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         role,
		Capabilities: authz.NewCapabilitySet(role, extra...),
	}, nil
}

var _ authz.IdentityResolver = (*Service)(nil)
