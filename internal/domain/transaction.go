package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes balance-affecting operations.
type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
)

// Transaction is one immutable ledger entry. Entries exist only inside an
// Account aggregate: they are appended on every balance-affecting
// operation and never reordered, mutated or deleted afterwards.
type Transaction struct {
	Entity

	kind         TransactionKind
	amount       decimal.Decimal
	description  string
	balanceAfter decimal.Decimal
	timestamp    time.Time
}

func newTransaction(kind TransactionKind, amount decimal.Decimal, description string, balanceAfter decimal.Decimal, now time.Time) Transaction {
	return Transaction{
		Entity:       NewEntity(NewID()),
		kind:         kind,
		amount:       amount,
		description:  description,
		balanceAfter: balanceAfter,
		timestamp:    now,
	}
}

func (t Transaction) Kind() TransactionKind {
	return t.kind
}

// Amount is always positive; Kind determines the sign of the entry's
// contribution to the balance.
func (t Transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t Transaction) Description() string {
	return t.description
}

// BalanceAfter is the account balance snapshot taken right after this
// entry was applied.
func (t Transaction) BalanceAfter() decimal.Decimal {
	return t.balanceAfter
}

func (t Transaction) Timestamp() time.Time {
	return t.timestamp
}

// Signed returns the entry's contribution to the running balance:
// positive for deposits, negative for withdrawals.
func (t Transaction) Signed() decimal.Decimal {
	if t.kind == TransactionWithdrawal {
		return t.amount.Neg()
	}

	return t.amount
}

// TransactionSnapshot is the persistence-facing view of a ledger entry.
type TransactionSnapshot struct {
	ID           string          `json:"id"`
	Kind         TransactionKind `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Snapshot returns the entry's persistence-facing view.
func (t Transaction) Snapshot() TransactionSnapshot {
	return TransactionSnapshot{
		ID:           t.ID(),
		Kind:         t.kind,
		Amount:       t.amount,
		Description:  t.description,
		BalanceAfter: t.balanceAfter,
		Timestamp:    t.timestamp,
	}
}

func transactionFromSnapshot(s TransactionSnapshot) Transaction {
	return Transaction{
		Entity:       NewEntity(s.ID),
		kind:         s.Kind,
		amount:       s.Amount,
		description:  s.Description,
		balanceAfter: s.BalanceAfter,
		timestamp:    s.Timestamp,
	}
}
