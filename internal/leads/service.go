package leads

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lodestar-crm/lodestar-crm/internal/bulk"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	"github.com/lodestar-crm/lodestar-crm/internal/shared"
)

var companyCaser = cases.Title(language.English)

type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateLeadRequest, createdBy int64) (*Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	lead := Lead{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Source:    req.Source,
		Status:    req.Status,
		Notes:     req.Notes,
		OwnerID:   req.OwnerID,
		CreatedBy: createdBy,
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}

	id, err := s.repo.Create(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	lead.ID = id
	return &lead, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateLeadRequest) (*Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.OwnerID != nil {
		updates["owner_id"] = *req.OwnerID
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Lead, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListLeadsRequest) ([]Lead, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Import validates and inserts a batch of raw rows. Rows are processed
// independently and in order; the result carries a per-row error list
// alongside the count of rows actually persisted.
func (s *Service) Import(ctx context.Context, rows []LeadRow, actorID int64) (bulk.Result, error) {
	result := bulk.Ingest(ctx, rows,
		func(row LeadRow) error {
			return s.validate.Struct(row)
		},
		func(ctx context.Context, row LeadRow) error {
			lead := Lead{
				Name:      strings.TrimSpace(row.Name),
				Email:     row.Email,
				Phone:     row.Phone,
				Company:   normalizeCompany(row.Company),
				Source:    row.Source,
				Status:    row.Status,
				Notes:     row.Notes,
				CreatedBy: actorID,
			}
			if lead.Status == "" {
				lead.Status = StatusNew
			}
			_, err := s.repo.Create(ctx, lead)
			return err
		},
	)

	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "leads.import",
			Entity:   "lead_batch",
			EntityID: strconv.Itoa(len(rows)),
			Meta:     map[string]any{"inserted": result.InsertedCount, "failed": len(result.Errors)},
		}); err != nil {
			return result, fmt.Errorf("audit import: %w", err)
		}
	}
	return result, nil
}

func normalizeCompany(company *string) *string {
	if company == nil {
		return nil
	}
	normalized := companyCaser.String(strings.TrimSpace(*company))
	return &normalized
}
