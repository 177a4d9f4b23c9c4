package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeAccountOpened  = "account.opened"
	EventTypeDepositMade    = "account.deposit_made"
	EventTypeWithdrawalMade = "account.withdrawal_made"
	EventTypeAccountFrozen  = "account.frozen"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// Event is a fact recorded by an aggregate after a successful mutation.
// Facts are delivered to interested collaborators (alerts, audits) by the
// caller; the aggregate itself performs no I/O.
type Event interface {
	EventType() string
	AggregateID() string
}

// AccountOpened payload
type AccountOpened struct {
	AccountID      string          `json:"account_id"`
	AccountNumber  string          `json:"account_number"`
	HolderName     string          `json:"holder_name"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

func (e AccountOpened) EventType() string   { return EventTypeAccountOpened }
func (e AccountOpened) AggregateID() string { return e.AccountID }

// DepositMade payload
type DepositMade struct {
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (e DepositMade) EventType() string   { return EventTypeDepositMade }
func (e DepositMade) AggregateID() string { return e.AccountID }

// WithdrawalMade payload
type WithdrawalMade struct {
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (e WithdrawalMade) EventType() string   { return EventTypeWithdrawalMade }
func (e WithdrawalMade) AggregateID() string { return e.AccountID }

// AccountFrozen payload
type AccountFrozen struct {
	AccountID string `json:"account_id"`
}

func (e AccountFrozen) EventType() string   { return EventTypeAccountFrozen }
func (e AccountFrozen) AggregateID() string { return e.AccountID }

// OutboxEvent is the stored envelope for a fact awaiting delivery.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
