package users

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/lodestar-crm/lodestar-crm/internal/authz"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, email, name, passwordHash, role string) (int64, error)
	UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser provisions an account. The password is hashed here and the
// plaintext is never stored or returned.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.repo.CreateUser(ctx, req.Email, req.Name, string(hash), req.Role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.repo.GetUser(ctx, id)
}

// UpdateUser applies role, activation and extra capability changes.
// Extra capabilities outside the closed enumeration are rejected.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ExtraCapabilities != nil {
		caps := make([]string, 0, len(*req.ExtraCapabilities))
		for _, raw := range *req.ExtraCapabilities {
			cap, ok := authz.ParseCapability(raw)
			if !ok {
				return nil, fmt.Errorf("%w: unknown capability %q", httpx.ErrValidation, raw)
			}
			caps = append(caps, string(cap))
		}
		updates["extra_capabilities"] = caps
	}

	if len(updates) == 0 {
		return s.repo.GetUser(ctx, id)
	}

	if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.repo.GetUser(ctx, id)
}
