package result

import (
	"errors"
	"fmt"
)

// ValidationError rejects a required field that is missing, unparsable or out
// of its domain. It is returned before any computation runs.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ArithmeticGuardError is raised by a formula that would otherwise divide by
// zero or work with a negative duration or area.
type ArithmeticGuardError struct {
	Formula string
	Operand string
	Reason  string
}

func (e *ArithmeticGuardError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Formula, e.Operand, e.Reason)
}

// Guard builds an ArithmeticGuardError.
func Guard(formula, operand, reason string) *ArithmeticGuardError {
	return &ArithmeticGuardError{Formula: formula, Operand: operand, Reason: reason}
}

// LookupMiss reports a reference-table key with no data.
type LookupMiss struct {
	Table string `json:"table"`
	Key   string `json:"key"`
}

func (e *LookupMiss) Error() string {
	return fmt.Sprintf("%s: no data for %q", e.Table, e.Key)
}

// Validation converts an ArithmeticGuardError into the ValidationError seen by
// callers. Other errors pass through unchanged, nil stays nil.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	var guard *ArithmeticGuardError
	if errors.As(err, &guard) {
		return &ValidationError{
			Field:  guard.Operand,
			Reason: fmt.Sprintf("%s (%s)", guard.Reason, guard.Formula),
		}
	}
	return err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsLookupMiss reports whether err is (or wraps) a LookupMiss.
func IsLookupMiss(err error) bool {
	var m *LookupMiss
	return errors.As(err, &m)
}
