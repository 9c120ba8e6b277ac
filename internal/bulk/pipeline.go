// Package bulk implements the batch import pipeline shared by the lead
// and customer importers.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RowError captures one failed row together with its original input so
// operators can correlate errors back to their source spreadsheet rows.
type RowError struct {
	RowData any    `json:"rowData,omitempty"`
	Error   string `json:"error"`
}

// Result reports the outcome of one ingest invocation.
// InsertedCount + len(Errors) always equals the number of submitted rows.
type Result struct {
	InsertedCount int        `json:"insertedCount"`
	Errors        []RowError `json:"errors"`
}

// Ingest validates and persists rows sequentially, in input order. Rows
// are independent: a failing row is recorded and the batch continues.
// A row that validates but fails to persist counts as an error, not as
// inserted. Already-inserted rows are never rolled back.
func Ingest[R any](ctx context.Context, rows []R, validate func(R) error, insert func(context.Context, R) error) Result {
	result := Result{Errors: make([]RowError, 0)}
	for _, row := range rows {
		if err := validate(row); err != nil {
			result.Errors = append(result.Errors, RowError{RowData: row, Error: reason(err)})
			continue
		}
		if err := insert(ctx, row); err != nil {
			result.Errors = append(result.Errors, RowError{RowData: row, Error: reason(err)})
			continue
		}
		result.InsertedCount++
	}
	return result
}

// reason renders a human-readable failure message for one row.
func reason(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
