package domain

import "time"

// InvariantChecker is implemented by every aggregate that can verify its
// own consistency. CheckInvariants must return an *InvariantError when the
// aggregate's state is internally inconsistent.
type InvariantChecker interface {
	CheckInvariants() error
}

// AggregateRoot is the base for consistency boundaries. It carries the
// optimistic-concurrency version counter, the last-modified timestamp and
// the facts recorded by mutations, and provides the rule-checking gate
// shared by all aggregates.
//
// The contract for every mutating operation is:
//
//  1. beforeStateChange: fail fast if the pre-mutation state is already
//     inconsistent (corruption from a previous bug, not caller error).
//  2. CheckRule: run the operation's business rules; the first unsatisfied
//     rule rejects the operation before any field is written.
//  3. Write fields, append ledger entries, Record facts.
//  4. CheckInvariants again, then markModified exactly once.
//
// A failed operation therefore never advances the version.
type AggregateRoot struct {
	Entity

	version      int64
	lastModified time.Time
	events       []Event
}

func newAggregateRoot(id string, now time.Time) AggregateRoot {
	return AggregateRoot{
		Entity:       NewEntity(id),
		version:      0,
		lastModified: now,
	}
}

// Version returns the optimistic-concurrency counter. It increments by
// exactly one per successful mutation and is unchanged by failed ones.
func (a *AggregateRoot) Version() int64 {
	return a.version
}

// LastModified returns the time of the last successful mutation.
func (a *AggregateRoot) LastModified() time.Time {
	return a.lastModified
}

// CheckRule evaluates rules in order and returns a *RuleError carrying the
// first unsatisfied rule's message. It has no effect when all rules hold.
func (a *AggregateRoot) CheckRule(rules ...Rule) error {
	for _, r := range rules {
		if !r.IsSatisfied() {
			return &RuleError{Message: r.Message()}
		}
	}

	return nil
}

// beforeStateChange guards the start of every mutating operation: a failure
// here means the aggregate was already corrupt before the mutation began.
func (a *AggregateRoot) beforeStateChange(c InvariantChecker) error {
	return c.CheckInvariants()
}

// markModified advances the version and refreshes the timestamp. Called
// exactly once per successful mutation, after all fields are written.
func (a *AggregateRoot) markModified(now time.Time) {
	a.version++
	a.lastModified = now
}

// restore sets version and timestamp verbatim during reconstruction from
// persisted state.
func (a *AggregateRoot) restore(version int64, lastModified time.Time) {
	a.version = version
	a.lastModified = lastModified
}

// Record appends a fact describing a successful mutation. The aggregate
// performs no I/O itself; the caller pulls recorded facts and decides how
// they are delivered.
func (a *AggregateRoot) Record(e Event) {
	a.events = append(a.events, e)
}

// PullEvents returns the recorded facts and clears them.
func (a *AggregateRoot) PullEvents() []Event {
	events := a.events
	a.events = nil

	return events
}
