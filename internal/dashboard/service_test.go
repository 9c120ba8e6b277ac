package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

type stubRepo struct {
	leadCounts map[string]int
	customers  int
	pending    int
	buildCalls int
	cleared    bool
	err        error
}

func (s *stubRepo) LeadCountsByStatus(ctx context.Context) (map[string]int, error) {
	s.buildCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.leadCounts, nil
}

func (s *stubRepo) ActiveCustomerCount(ctx context.Context) (int, error) {
	return s.customers, s.err
}

func (s *stubRepo) EmailsAwaitingReply(ctx context.Context) (int, error) {
	return s.pending, s.err
}

func (s *stubRepo) ClearData(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = true
	s.leadCounts = map[string]int{}
	s.customers = 0
	s.pending = 0
	return nil
}

func newCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStatsAggregates(t *testing.T) {
	repo := &stubRepo{
		leadCounts: map[string]int{"new": 3, "qualified": 2},
		customers:  5,
		pending:    1,
	}
	svc := NewService(repo, newCache(t), time.Minute, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, stats.TotalLeads)
	require.Equal(t, 5, stats.ActiveCustomers)
	require.Equal(t, 1, stats.EmailsAwaitingReply)
	require.Equal(t, 3, stats.LeadsByStatus["new"])
}

func TestStatsServedFromCache(t *testing.T) {
	repo := &stubRepo{leadCounts: map[string]int{"new": 1}}
	svc := NewService(repo, newCache(t), time.Minute, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, repo.buildCalls)
}

func TestStatsWorksWithoutCache(t *testing.T) {
	repo := &stubRepo{leadCounts: map[string]int{"new": 1}}
	svc := NewService(repo, nil, time.Minute, nil)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.buildCalls)
}

func TestStatsPropagatesRepoError(t *testing.T) {
	repo := &stubRepo{err: errors.New("pg down")}
	svc := NewService(repo, newCache(t), time.Minute, nil)

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}

func TestClearDataInvalidatesCache(t *testing.T) {
	repo := &stubRepo{leadCounts: map[string]int{"new": 4}, customers: 2}
	cache := newCache(t)
	svc := NewService(repo, cache, time.Minute, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalLeads)

	require.NoError(t, svc.ClearData(context.Background(), 1))
	require.True(t, repo.cleared)

	stats, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalLeads)
	require.Zero(t, stats.ActiveCustomers)
}

func TestRefreshRepopulatesCache(t *testing.T) {
	repo := &stubRepo{leadCounts: map[string]int{"new": 2}}
	cache := newCache(t)
	svc := NewService(repo, cache, time.Minute, nil)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// Subsequent reads hit the warmed cache, not the repository.
	calls := repo.buildCalls
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, calls, repo.buildCalls)
}
