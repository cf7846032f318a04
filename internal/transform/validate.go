package transform

import (
	"errors"
	"fmt"

	"github.com/timmy/papertrawl/internal/domain"
)

// ValidationError reports a schema violation found while preparing a merge
// unit. The merge halts on it instead of silently dropping rows.
type ValidationError struct {
	Date   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("validation failed for partition %s: %s", e.Date, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// validateBatch enforces the non-null and uniqueness constraints of the
// papers table before any row touches the database: id, title, created and
// primary_category must be non-null, and ids must be unique within the
// batch. Empty strings satisfy the constraint, only a missing field is a
// violation.
func validateBatch(date string, records []domain.Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID == "" {
			return &ValidationError{Date: date, Reason: "record with empty id"}
		}
		if r.Title == nil {
			return &ValidationError{Date: date, Reason: "record " + r.ID + " has no title"}
		}
		if r.Created == nil {
			return &ValidationError{Date: date, Reason: "record " + r.ID + " has no created date"}
		}
		if r.PrimaryCategory == nil {
			return &ValidationError{Date: date, Reason: "record " + r.ID + " has no primary category"}
		}
		if _, dup := seen[r.ID]; dup {
			return &ValidationError{Date: date, Reason: "duplicate id " + r.ID}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
