package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lodestar-crm/lodestar-crm/internal/auth"
	"github.com/lodestar-crm/lodestar-crm/internal/authz"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

type stubRepo struct {
	users      map[string]*auth.User
	byID       map[int64]*auth.User
	findErr    error
	deletedIDs []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, httpx.ErrNotFound
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, limit int) (int64, error) {
	return 0, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T) *auth.User {
	return &auth.User{
		ID:           7,
		Email:        "rep@example.com",
		Name:         "Rep",
		PasswordHash: mustHash(t, "correct-horse"),
		Role:         "sales",
		IsActive:     true,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	user := activeUser(t)
	repo := &stubRepo{users: map[string]*auth.User{user.Email: user}}
	svc := auth.NewService(repo)

	got, err := svc.Authenticate(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	user := activeUser(t)
	inactive := activeUser(t)
	inactive.Email = "gone@example.com"
	inactive.IsActive = false

	repo := &stubRepo{users: map[string]*auth.User{
		user.Email:     user,
		inactive.Email: inactive,
	}}
	svc := auth.NewService(repo)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown user", "nobody@example.com", "whatever-pass"},
		{"wrong password", user.Email, "wrong-password"},
		{"inactive account", inactive.Email, "correct-horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.email, tc.password)
			require.ErrorIs(t, err, httpx.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticateStoreFailureNotFoldedIntoCredentials(t *testing.T) {
	repo := &stubRepo{findErr: httpx.ErrUnavailable}
	svc := auth.NewService(repo)

	_, err := svc.Authenticate(context.Background(), "rep@example.com", "correct-horse")
	require.ErrorIs(t, err, httpx.ErrUnavailable)
	require.False(t, errors.Is(err, httpx.ErrInvalidCredentials))
}

func TestResolveIdentity(t *testing.T) {
	user := activeUser(t)
	user.ExtraCapabilities = []string{"leads.import", "not.a.capability"}
	repo := &stubRepo{byID: map[int64]*auth.User{user.ID: user}}
	svc := auth.NewService(repo)

	id, err := svc.ResolveIdentity(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, authz.RoleSales, id.Role)
	require.True(t, id.Capabilities.Has(authz.CapLeadsImport))
	require.True(t, id.Capabilities.Has(authz.CapLeadsView))
	require.False(t, id.Capabilities.Has(authz.CapUsersEdit))
}

func TestResolveIdentityMissingUserUnauthenticated(t *testing.T) {
	repo := &stubRepo{byID: map[int64]*auth.User{}}
	svc := auth.NewService(repo)

	_, err := svc.ResolveIdentity(context.Background(), 404)
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestResolveIdentityInactiveUserUnauthenticated(t *testing.T) {
	user := activeUser(t)
	user.IsActive = false
	repo := &stubRepo{byID: map[int64]*auth.User{user.ID: user}}
	svc := auth.NewService(repo)

	_, err := svc.ResolveIdentity(context.Background(), user.ID)
	require.ErrorIs(t, err, httpx.ErrUnauthenticated)
}

func TestRemoveSessionIdempotent(t *testing.T) {
	repo := &stubRepo{}
	svc := auth.NewService(repo)

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	require.Equal(t, []string{"sess-1", "sess-1"}, repo.deletedIDs)
}
