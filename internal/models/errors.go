package models

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap exactly one of these so callers can
// branch with errors.Is regardless of which layer produced them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency failure")
)

// Sentinel errors for entity lookups.
var (
	ErrRuleNotFound       = fmt.Errorf("rule %w", ErrNotFound)
	ErrPolicyNotFound     = fmt.Errorf("retention policy %w", ErrNotFound)
	ErrAuditEntryNotFound = fmt.Errorf("audit entry %w", ErrNotFound)
)

// Sentinel errors for validation.
var (
	ErrMissingPattern  = fmt.Errorf("%w: pattern is required", ErrValidation)
	ErrEmptyPatch      = fmt.Errorf("%w: at least one field must be supplied", ErrValidation)
	ErrMaxDaysRange    = fmt.Errorf("%w: max_days must be between %d and %d", ErrValidation, MinRetentionDays, MaxRetentionDays)
	ErrReorderMismatch = fmt.Errorf("%w: rule_ids must contain every rule of the platform exactly once", ErrValidation)
)

// Invalid returns a validation error for the named field.
func Invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%w: %s exceeds maximum length of %d", ErrValidation, field, maxLen)
}
