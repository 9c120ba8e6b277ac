package leads

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

type memoryRepo struct {
	leads  map[int64]Lead
	nextID int64
	emails map[string]struct{}
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{leads: make(map[int64]Lead), nextID: 1, emails: make(map[string]struct{})}
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (*Lead, error) {
	lead, ok := m.leads[id]
	if !ok {
		return nil, fmt.Errorf("lead %d: %w", id, httpx.ErrNotFound)
	}
	return &lead, nil
}

func (m *memoryRepo) List(ctx context.Context, req ListLeadsRequest) ([]Lead, int, error) {
	var out []Lead
	for _, lead := range m.leads {
		if req.Status != nil && lead.Status != *req.Status {
			continue
		}
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(ctx context.Context, lead Lead) (int64, error) {
	if lead.Email != nil {
		if _, dup := m.emails[*lead.Email]; dup {
			return 0, fmt.Errorf("lead email %s: %w", *lead.Email, httpx.ErrDuplicate)
		}
		m.emails[*lead.Email] = struct{}{}
	}
	lead.ID = m.nextID
	m.nextID++
	m.leads[lead.ID] = lead
	return lead.ID, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	lead, ok := m.leads[id]
	if !ok {
		return fmt.Errorf("lead %d: %w", id, httpx.ErrNotFound)
	}
	if status, ok := updates["status"].(string); ok {
		lead.Status = status
	}
	if name, ok := updates["name"].(string); ok {
		lead.Name = name
	}
	m.leads[id] = lead
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.leads[id]; !ok {
		return fmt.Errorf("lead %d: %w", id, httpx.ErrNotFound)
	}
	delete(m.leads, id)
	return nil
}

func str(s string) *string { return &s }

func TestCreateDefaultsStatusToNew(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	lead, err := svc.Create(context.Background(), CreateLeadRequest{Name: "Dana Fields"}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusNew, lead.Status)
	require.Equal(t, int64(1), lead.CreatedBy)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Create(context.Background(), CreateLeadRequest{Name: "Dana", Status: "archived"}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateUnknownLeadNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	status := StatusContacted
	_, err := svc.Update(context.Background(), 99, UpdateLeadRequest{Status: &status})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestImportRowsIndependent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	rows := []LeadRow{
		{Name: "First Lead", Email: str("first@example.com")},
		{Name: "", Email: str("second@example.com")}, // missing name
		{Name: "Third Lead", Email: str("third@example.com")},
	}

	result, err := svc.Import(context.Background(), rows, 1)
	require.NoError(t, err)
	require.Equal(t, 2, result.InsertedCount)
	require.Len(t, result.Errors, 1)
	require.Equal(t, len(rows), result.InsertedCount+len(result.Errors))

	failed, ok := result.Errors[0].RowData.(LeadRow)
	require.True(t, ok)
	require.Equal(t, rows[1].Email, failed.Email)
}

func TestImportDuplicateEmailCountsAsError(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	rows := []LeadRow{
		{Name: "Original", Email: str("same@example.com")},
		{Name: "Copycat", Email: str("same@example.com")},
	}

	result, err := svc.Import(context.Background(), rows, 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.InsertedCount)
	require.Len(t, result.Errors, 1)
	// The first row persisted and stays persisted; no batch rollback.
	require.Len(t, repo.leads, 1)
}

func TestImportNormalizesCompanyName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	rows := []LeadRow{{Name: "Lead", Company: str("  acme widgets  ")}}
	result, err := svc.Import(context.Background(), rows, 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.InsertedCount)

	stored := repo.leads[1]
	require.NotNil(t, stored.Company)
	require.Equal(t, "Acme Widgets", *stored.Company)
}

func TestImportEmptyBatch(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	result, err := svc.Import(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Zero(t, result.InsertedCount)
	require.Empty(t, result.Errors)
}
