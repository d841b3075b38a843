package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes one record that breaks a catalog invariant.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for tools[%d].%s: %s", e.Index, e.Field, e.Message)
}

// newValidationError reports that field of tools[index] breaks a catalog rule.
func newValidationError(index int, field, message string) *ValidationError {
	return &ValidationError{
		Index:   index,
		Field:   field,
		Message: message,
	}
}

// Validate checks every record. Name, category and reason must be non-blank.
// An alternative, when set, must not be blank either. The verdict must be one
// of the three states. All failures are joined.
func (c Catalog) Validate() error {
	var errs []error
	for i, t := range c.tools {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, newValidationError(i, "name", "must not be empty"))
		}
		if strings.TrimSpace(t.Category) == "" {
			errs = append(errs, newValidationError(i, "category", "must not be empty"))
		}
		if strings.TrimSpace(t.Reason) == "" {
			errs = append(errs, newValidationError(i, "reason", "must not be empty"))
		}
		if t.Alternative != "" && strings.TrimSpace(t.Alternative) == "" {
			errs = append(errs, newValidationError(i, "alternative", "must not be blank when set"))
		}
		if !t.Compliant.Valid() {
			errs = append(errs, newValidationError(i, "compliant", "must be true, false or partial"))
		}
	}
	return errors.Join(errs...)
}
