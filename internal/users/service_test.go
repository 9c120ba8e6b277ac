package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

type memoryRepo struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User), hashes: make(map[int64]string), nextID: 1}
}

func (m *memoryRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
	}
	return &u, nil
}

func (m *memoryRepo) CreateUser(ctx context.Context, email, name, passwordHash, role string) (int64, error) {
	id := m.nextID
	m.nextID++
	m.users[id] = User{ID: id, Email: email, Name: name, Role: role, IsActive: true}
	m.hashes[id] = passwordHash
	return id, nil
}

func (m *memoryRepo) UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, httpx.ErrNotFound)
	}
	if role, ok := updates["role"].(string); ok {
		u.Role = role
	}
	if active, ok := updates["is_active"].(bool); ok {
		u.IsActive = active
	}
	if caps, ok := updates["extra_capabilities"].([]string); ok {
		u.ExtraCapabilities = caps
	}
	m.users[id] = u
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "rep@example.com",
		Name:     "Rep",
		Password: "hunter2hunter2",
		Role:     "sales",
	})
	require.NoError(t, err)

	hash := repo.hashes[user.ID]
	require.NotEqual(t, "hunter2hunter2", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2hunter2")))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:    "rep@example.com",
		Name:     "Rep",
		Password: "hunter2hunter2",
		Role:     "owner",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateUserRejectsUnknownCapability(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	seeded, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email: "rep@example.com", Name: "Rep", Password: "hunter2hunter2", Role: "sales",
	})
	require.NoError(t, err)

	bad := []string{"leads.import", "db.drop_everything"}
	_, err = svc.UpdateUser(context.Background(), seeded.ID, UpdateUserRequest{ExtraCapabilities: &bad})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateUserGrantsExtraCapabilities(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	seeded, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email: "rep@example.com", Name: "Rep", Password: "hunter2hunter2", Role: "sales",
	})
	require.NoError(t, err)

	caps := []string{"leads.import"}
	updated, err := svc.UpdateUser(context.Background(), seeded.ID, UpdateUserRequest{ExtraCapabilities: &caps})
	require.NoError(t, err)
	require.Equal(t, caps, updated.ExtraCapabilities)
}

func TestUpdateUserDeactivate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	seeded, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email: "rep@example.com", Name: "Rep", Password: "hunter2hunter2", Role: "sales",
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateUser(context.Background(), seeded.ID, UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
}
