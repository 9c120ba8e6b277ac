package customers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lodestar-crm/lodestar-crm/internal/bulk"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	"github.com/lodestar-crm/lodestar-crm/internal/shared"
)

type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, createdBy int64) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	customer := Customer{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		Notes:     req.Notes,
		IsActive:  true,
		CreatedBy: createdBy,
	}

	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	customer.ID = id
	return &customer, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
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
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Import validates and inserts a batch of raw rows, row by row, in input
// order. Failed rows are reported with their original data.
func (s *Service) Import(ctx context.Context, rows []CustomerRow, actorID int64) (bulk.Result, error) {
	result := bulk.Ingest(ctx, rows,
		func(row CustomerRow) error {
			return s.validate.Struct(row)
		},
		func(ctx context.Context, row CustomerRow) error {
			customer := Customer{
				Name:      strings.TrimSpace(row.Name),
				Email:     row.Email,
				Phone:     row.Phone,
				Company:   row.Company,
				Address:   row.Address,
				City:      row.City,
				Country:   row.Country,
				Notes:     row.Notes,
				IsActive:  true,
				CreatedBy: actorID,
			}
			_, err := s.repo.Create(ctx, customer)
			return err
		},
	)

	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "customers.import",
			Entity:   "customer_batch",
			EntityID: strconv.Itoa(len(rows)),
			Meta:     map[string]any{"inserted": result.InsertedCount, "failed": len(result.Errors)},
		}); err != nil {
			return result, fmt.Errorf("audit import: %w", err)
		}
	}
	return result, nil
}
