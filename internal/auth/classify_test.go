package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

func TestClassifyConnectionRefused(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

	err := classify(fmt.Errorf("failed to connect to postgres: %w", dialErr))
	require.ErrorIs(t, err, httpx.ErrUnavailable)
}

func TestClassifyDeadlineAndCancel(t *testing.T) {
	require.ErrorIs(t, classify(fmt.Errorf("query: %w", context.DeadlineExceeded)), httpx.ErrUnavailable)
	require.ErrorIs(t, classify(fmt.Errorf("query: %w", context.Canceled)), httpx.ErrUnavailable)
}

func TestClassifyLeavesQueryErrorsAlone(t *testing.T) {
	original := errors.New(`syntax error at or near "FORM"`)

	err := classify(original)
	require.NotErrorIs(t, err, httpx.ErrUnavailable)
	require.Equal(t, original, err)
}

func TestClassifyNil(t *testing.T) {
	require.NoError(t, classify(nil))
}
