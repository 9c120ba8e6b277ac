package bulk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name  string `validate:"required"`
	Email string `validate:"omitempty,email"`
}

func TestIngestAllRowsSucceed(t *testing.T) {
	rows := []row{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	v := validator.New()

	result := Ingest(context.Background(), rows,
		func(r row) error { return v.Struct(r) },
		func(ctx context.Context, r row) error { return nil },
	)

	require.Equal(t, 3, result.InsertedCount)
	require.Empty(t, result.Errors)
}

func TestIngestInvalidRowSkippedOthersInserted(t *testing.T) {
	rows := []row{
		{Name: "first"},
		{Name: ""}, // missing required field
		{Name: "third"},
	}
	v := validator.New()
	var inserted []string

	result := Ingest(context.Background(), rows,
		func(r row) error { return v.Struct(r) },
		func(ctx context.Context, r row) error {
			inserted = append(inserted, r.Name)
			return nil
		},
	)

	require.Equal(t, 2, result.InsertedCount)
	require.Len(t, result.Errors, 1)
	require.Equal(t, []string{"first", "third"}, inserted)

	failed, ok := result.Errors[0].RowData.(row)
	require.True(t, ok)
	require.Equal(t, rows[1], failed)
	require.Contains(t, result.Errors[0].Error, "Name")
	require.Contains(t, result.Errors[0].Error, "required")
}

func TestIngestPersistFailureCountsAsError(t *testing.T) {
	rows := []row{{Name: "dup"}, {Name: "fresh"}}
	v := validator.New()

	result := Ingest(context.Background(), rows,
		func(r row) error { return v.Struct(r) },
		func(ctx context.Context, r row) error {
			if r.Name == "dup" {
				return errors.New("duplicate email")
			}
			return nil
		},
	)

	require.Equal(t, 1, result.InsertedCount)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "duplicate email", result.Errors[0].Error)
}

func TestIngestCountInvariant(t *testing.T) {
	for _, n := range []int{0, 1, 7, 32} {
		rows := make([]row, n)
		for i := range rows {
			if i%3 == 0 {
				rows[i] = row{Name: fmt.Sprintf("row-%d", i)}
			}
		}
		v := validator.New()
		result := Ingest(context.Background(), rows,
			func(r row) error { return v.Struct(r) },
			func(ctx context.Context, r row) error { return nil },
		)
		require.Equal(t, n, result.InsertedCount+len(result.Errors), "n=%d", n)
	}
}

func TestIngestPreservesInputOrderInErrors(t *testing.T) {
	rows := []row{{Name: ""}, {Name: "ok"}, {Name: ""}}
	v := validator.New()

	result := Ingest(context.Background(), rows,
		func(r row) error { return v.Struct(r) },
		func(ctx context.Context, r row) error { return nil },
	)

	require.Len(t, result.Errors, 2)
	// Errors appear in the order their rows appeared in the input.
	require.Equal(t, rows[0], result.Errors[0].RowData)
	require.Equal(t, rows[2], result.Errors[1].RowData)
}

func TestIngestEmptyBatch(t *testing.T) {
	result := Ingest(context.Background(), nil,
		func(r row) error { return nil },
		func(ctx context.Context, r row) error { return nil },
	)
	require.Zero(t, result.InsertedCount)
	require.NotNil(t, result.Errors)
	require.Empty(t, result.Errors)
}
