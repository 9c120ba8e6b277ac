package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/lodestar-crm/lodestar-crm/internal/shared"
)

const statsCacheKey = "dashboard:stats"

// Stats aggregates the numbers the dashboard renders.
type Stats struct {
	LeadsByStatus       map[string]int `json:"leadsByStatus"`
	TotalLeads          int            `json:"totalLeads"`
	ActiveCustomers     int            `json:"activeCustomers"`
	EmailsAwaitingReply int            `json:"emailsAwaitingReply"`
	GeneratedAt         time.Time      `json:"generatedAt"`
}

type Service struct {
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
	audit    *shared.AuditLogger
	group    singleflight.Group
}

func NewService(repo Repository, cache *redis.Client, cacheTTL time.Duration, audit *shared.AuditLogger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, audit: audit}
}

// Stats returns dashboard aggregates, cached in Redis. Concurrent cache
// misses share one rebuild via singleflight.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	// Cache trouble must not take the dashboard down; misses and Redis
	// errors both fall through to a rebuild.
	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var cached Stats
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	result, err, _ := s.group.Do(statsCacheKey, func() (interface{}, error) {
		return s.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	stats := result.(*Stats)

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err()
		}
	}
	return stats, nil
}

// Refresh rebuilds the cached stats unconditionally. Used by the warmup job.
func (s *Service) Refresh(ctx context.Context) (*Stats, error) {
	stats, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				return stats, fmt.Errorf("dashboard: cache stats: %w", err)
			}
		}
	}
	return stats, nil
}

// ClearData wipes leads, customers and communications, invalidates the
// stats cache and records who asked for it.
func (s *Service) ClearData(ctx context.Context, actorID int64) error {
	if err := s.repo.ClearData(ctx); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, statsCacheKey).Err()
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "system.clear_data",
			Entity:   "system",
			EntityID: "all",
		}); err != nil {
			return fmt.Errorf("audit clear data: %w", err)
		}
	}
	return nil
}

func (s *Service) build(ctx context.Context) (*Stats, error) {
	byStatus, err := s.repo.LeadCountsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("lead counts: %w", err)
	}
	total := 0
	for _, count := range byStatus {
		total += count
	}
	customers, err := s.repo.ActiveCustomerCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer count: %w", err)
	}
	pending, err := s.repo.EmailsAwaitingReply(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending emails: %w", err)
	}
	return &Stats{
		LeadsByStatus:       byStatus,
		TotalLeads:          total,
		ActiveCustomers:     customers,
		EmailsAwaitingReply: pending,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}
