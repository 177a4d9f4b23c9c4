package domain

import "errors"

var (
	// ErrAccountNotFound is returned when no account exists for a given ID
	// or account number.
	ErrAccountNotFound = errors.New("account not found")

	// ErrVersionConflict is reported by the persistence layer when a write
	// observes a stored version different from the one the aggregate was
	// loaded with. The caller must reload and retry the whole operation.
	ErrVersionConflict = errors.New("account version conflict")
)

// RuleError rejects an operation because a business rule is not satisfied
// by the current aggregate state or the caller's input. It is always
// correctable by the caller and never leaves the aggregate mutated.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return "rule violation: " + e.Message
}

// InvariantError reports broken aggregate consistency. It is a defect in
// this codebase, not a user error: it is never corrected silently and is
// meant to abort the surrounding unit of work.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// IsRuleError reports whether err is (or wraps) a rule violation.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// IsInvariantError reports whether err is (or wraps) an invariant violation.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
