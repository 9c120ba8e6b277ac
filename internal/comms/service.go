package comms

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(), now: time.Now}
}

// Log records a communication. Exactly one of lead or customer must be
// referenced. Outbound emails start in the sent state so replies can be
// tracked against them; other channels are closed immediately.
func (s *Service) Log(ctx context.Context, req LogCommunicationRequest, createdBy int64) (*Communication, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if (req.LeadID == nil) == (req.CustomerID == nil) {
		return nil, fmt.Errorf("%w: exactly one of lead_id or customer_id is required", httpx.ErrValidation)
	}

	comm := Communication{
		LeadID:     req.LeadID,
		CustomerID: req.CustomerID,
		Channel:    req.Channel,
		Direction:  req.Direction,
		Subject:    req.Subject,
		Body:       req.Body,
		SentAt:     s.now().UTC(),
		CreatedBy:  createdBy,
	}
	if comm.Direction == "" {
		comm.Direction = DirectionOutbound
	}
	if comm.Channel == ChannelEmail && comm.Direction == DirectionOutbound {
		comm.Status = StatusSent
	} else {
		comm.Status = StatusClosed
	}

	id, err := s.repo.Create(ctx, comm)
	if err != nil {
		return nil, fmt.Errorf("log communication: %w", err)
	}
	comm.ID = id
	return &comm, nil
}

// MarkReplied records that a reply arrived for an outbound email.
func (s *Service) MarkReplied(ctx context.Context, id int64) (*Communication, error) {
	if err := s.repo.MarkReplied(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Communication, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCommunicationsRequest) ([]Communication, int, error) {
	return s.repo.List(ctx, req)
}

// AwaitingReply lists outbound emails that have not received a reply.
func (s *Service) AwaitingReply(ctx context.Context, limit, offset int) ([]Communication, int, error) {
	status := StatusSent
	return s.repo.List(ctx, ListCommunicationsRequest{Status: &status, Limit: limit, Offset: offset})
}
