package comms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

type memoryRepo struct {
	comms  map[int64]Communication
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{comms: make(map[int64]Communication), nextID: 1}
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (*Communication, error) {
	c, ok := m.comms[id]
	if !ok {
		return nil, fmt.Errorf("communication %d: %w", id, httpx.ErrNotFound)
	}
	return &c, nil
}

func (m *memoryRepo) List(ctx context.Context, req ListCommunicationsRequest) ([]Communication, int, error) {
	var out []Communication
	for _, c := range m.comms {
		if req.Status != nil && c.Status != *req.Status {
			continue
		}
		if req.LeadID != nil && (c.LeadID == nil || *c.LeadID != *req.LeadID) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(ctx context.Context, c Communication) (int64, error) {
	c.ID = m.nextID
	m.nextID++
	m.comms[c.ID] = c
	return c.ID, nil
}

func (m *memoryRepo) CountAwaitingReply(ctx context.Context) (int, error) {
	count := 0
	for _, c := range m.comms {
		if c.Channel == ChannelEmail && c.Direction == DirectionOutbound && c.Status == StatusSent {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) MarkReplied(ctx context.Context, id int64, repliedAt time.Time) error {
	c, ok := m.comms[id]
	if !ok || c.Status != StatusSent {
		return fmt.Errorf("communication %d: %w", id, httpx.ErrNotFound)
	}
	c.Status = StatusReplied
	c.RepliedAt = &repliedAt
	m.comms[id] = c
	return nil
}

func i64(v int64) *int64 { return &v }

func TestLogOutboundEmailStartsSent(t *testing.T) {
	svc := NewService(newMemoryRepo())

	comm, err := svc.Log(context.Background(), LogCommunicationRequest{
		LeadID:  i64(4),
		Channel: ChannelEmail,
		Subject: "Intro pricing",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusSent, comm.Status)
	require.Equal(t, DirectionOutbound, comm.Direction)
}

func TestLogCallClosedImmediately(t *testing.T) {
	svc := NewService(newMemoryRepo())

	comm, err := svc.Log(context.Background(), LogCommunicationRequest{
		CustomerID: i64(2),
		Channel:    ChannelCall,
		Subject:    "Renewal call",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, comm.Status)
}

func TestLogInboundEmailClosed(t *testing.T) {
	svc := NewService(newMemoryRepo())

	comm, err := svc.Log(context.Background(), LogCommunicationRequest{
		LeadID:    i64(4),
		Channel:   ChannelEmail,
		Direction: DirectionInbound,
		Subject:   "Re: Intro pricing",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, StatusClosed, comm.Status)
}

func TestLogRequiresExactlyOneTarget(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Log(context.Background(), LogCommunicationRequest{
		Channel: ChannelEmail,
		Subject: "No target",
	}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Log(context.Background(), LogCommunicationRequest{
		LeadID:     i64(1),
		CustomerID: i64(2),
		Channel:    ChannelEmail,
		Subject:    "Both targets",
	}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestMarkRepliedTransitionsSentEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	comm, err := svc.Log(context.Background(), LogCommunicationRequest{
		LeadID:  i64(4),
		Channel: ChannelEmail,
		Subject: "Follow up",
	}, 1)
	require.NoError(t, err)

	replied, err := svc.MarkReplied(context.Background(), comm.ID)
	require.NoError(t, err)
	require.Equal(t, StatusReplied, replied.Status)
	require.NotNil(t, replied.RepliedAt)
}

func TestMarkRepliedOnClosedCommunicationFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	comm, err := svc.Log(context.Background(), LogCommunicationRequest{
		LeadID:  i64(4),
		Channel: ChannelNote,
		Subject: "Internal note",
	}, 1)
	require.NoError(t, err)

	_, err = svc.MarkReplied(context.Background(), comm.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAwaitingReplyListsOnlySentEmails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	first, err := svc.Log(context.Background(), LogCommunicationRequest{LeadID: i64(1), Channel: ChannelEmail, Subject: "a"}, 1)
	require.NoError(t, err)
	_, err = svc.Log(context.Background(), LogCommunicationRequest{LeadID: i64(1), Channel: ChannelCall, Subject: "b"}, 1)
	require.NoError(t, err)
	second, err := svc.Log(context.Background(), LogCommunicationRequest{LeadID: i64(2), Channel: ChannelEmail, Subject: "c"}, 1)
	require.NoError(t, err)

	_, err = svc.MarkReplied(context.Background(), first.ID)
	require.NoError(t, err)

	pending, total, err := svc.AwaitingReply(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].ID)
}
