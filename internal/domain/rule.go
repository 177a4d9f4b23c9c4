package domain

// Rule is a single business precondition. Implementations capture their
// inputs at construction and evaluate them without side effects; a rule
// that is not satisfied carries a human-readable violation message.
type Rule interface {
	IsSatisfied() bool
	Message() string
}
