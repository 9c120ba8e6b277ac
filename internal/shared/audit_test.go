package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

func TestOccurredAtUnsetEncodesNull(t *testing.T) {
	ts := occurredAt(time.Time{})
	require.False(t, ts.Valid, "zero event time must reach Postgres as NULL so NOW() applies")
}

func TestOccurredAtExplicitTimeKept(t *testing.T) {
	at := time.Date(2026, 8, 20, 14, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	ts := occurredAt(at)
	require.True(t, ts.Valid)
	require.True(t, ts.Time.Equal(at))
	require.Equal(t, time.UTC, ts.Time.Location())
}

func TestRecordRejectsIncompleteEntry(t *testing.T) {
	logger := NewAuditLogger(nil)

	err := logger.Record(context.Background(), AuditLog{ActorID: 1, Action: "lead.import"})
	require.Error(t, err)
}

func TestRecordOnNilLogger(t *testing.T) {
	var logger *AuditLogger

	err := logger.Record(context.Background(), AuditLog{Action: "a", Entity: "b", EntityID: "c"})
	require.Error(t, err)
}
