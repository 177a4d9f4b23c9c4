package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the account lifecycle state. The only transition is
// active -> frozen; no operation leaves the frozen state.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
)

// Account limits. Amounts are fixed-point decimals, never floats.
var (
	MinInitialDeposit       = decimal.RequireFromString("100.00")
	MinDepositAmount        = decimal.RequireFromString("0.01")
	MinWithdrawalAmount     = decimal.RequireFromString("1.00")
	MinDailyWithdrawalLimit = decimal.RequireFromString("1000.00")
	MaxDailyWithdrawalLimit = decimal.RequireFromString("10000.00")
)

const initialDepositDescription = "Initial deposit"

// Account is the bank account aggregate. All mutations go through the
// rule-checking gate and re-validate the aggregate invariants, so the
// cached balance always equals the signed sum of the ledger.
//
// The aggregate holds no locks and assumes a single mutator per instance;
// concurrent writers are detected at the persistence boundary through the
// version counter.
type Account struct {
	AggregateRoot

	accountNumber        string
	holderName           string
	balance              decimal.Decimal
	status               AccountStatus
	dailyWithdrawalLimit decimal.Decimal
	totalWithdrawnToday  decimal.Decimal
	ledger               []Transaction
	createdAt            time.Time
}

// OpenAccount creates a new account. The initial deposit and the daily
// withdrawal limit are validated by creation rules; on success the initial
// deposit is applied immediately, seeding the ledger with its first entry.
func OpenAccount(id, accountNumber, holderName string, initialDeposit, dailyWithdrawalLimit decimal.Decimal) (*Account, error) {
	now := time.Now().UTC()

	a := &Account{
		AggregateRoot:        newAggregateRoot(id, now),
		accountNumber:        accountNumber,
		holderName:           holderName,
		balance:              decimal.Zero,
		status:               AccountStatusActive,
		dailyWithdrawalLimit: dailyWithdrawalLimit,
		totalWithdrawnToday:  decimal.Zero,
		createdAt:            now,
	}

	err := a.CheckRule(
		minimumInitialDepositRule{amount: initialDeposit},
		validWithdrawalLimitRule{limit: dailyWithdrawalLimit},
	)
	if err != nil {
		return nil, err
	}

	if err := a.applyDeposit(initialDeposit, initialDepositDescription, now); err != nil {
		return nil, err
	}

	a.Record(AccountOpened{
		AccountID:      a.ID(),
		AccountNumber:  accountNumber,
		HolderName:     holderName,
		InitialDeposit: initialDeposit,
	})

	return a, nil
}

// Deposit credits the account and appends a deposit ledger entry.
func (a *Account) Deposit(amount decimal.Decimal, description string) error {
	if err := a.beforeStateChange(a); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := a.applyDeposit(amount, description, now); err != nil {
		return err
	}

	a.Record(DepositMade{
		AccountID:  a.ID(),
		Amount:     amount,
		NewBalance: a.balance,
	})

	return nil
}

// applyDeposit runs the deposit rules and, only if every rule holds,
// writes the new balance and ledger entry. Shared by Deposit and the
// creation-time initial deposit.
func (a *Account) applyDeposit(amount decimal.Decimal, description string, now time.Time) error {
	err := a.CheckRule(
		accountActiveRule{status: a.status},
		minimumDepositRule{amount: amount},
	)
	if err != nil {
		return err
	}

	a.balance = a.balance.Add(amount)
	a.ledger = append(a.ledger, newTransaction(TransactionDeposit, amount, description, a.balance, now))

	if err := a.CheckInvariants(); err != nil {
		return err
	}

	a.markModified(now)

	return nil
}

// Withdraw debits the account, counts the amount against the daily
// withdrawal limit and appends a withdrawal ledger entry. The rules run in
// a fixed order; the first unsatisfied one determines the error message,
// and no field is written until all of them hold.
func (a *Account) Withdraw(amount decimal.Decimal, description string) error {
	if err := a.beforeStateChange(a); err != nil {
		return err
	}

	err := a.CheckRule(
		accountActiveRule{status: a.status},
		sufficientBalanceRule{balance: a.balance, amount: amount},
		withinDailyLimitRule{withdrawnToday: a.totalWithdrawnToday, amount: amount, limit: a.dailyWithdrawalLimit},
		minimumWithdrawalRule{amount: amount},
	)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	a.balance = a.balance.Sub(amount)
	a.totalWithdrawnToday = a.totalWithdrawnToday.Add(amount)
	a.ledger = append(a.ledger, newTransaction(TransactionWithdrawal, amount, description, a.balance, now))

	if err := a.CheckInvariants(); err != nil {
		return err
	}

	a.markModified(now)

	a.Record(WithdrawalMade{
		AccountID:  a.ID(),
		Amount:     amount,
		NewBalance: a.balance,
	})

	return nil
}

// Freeze transitions the account from active to frozen. Freezing an
// already-frozen account fails with the account-not-active rule rather
// than silently succeeding.
func (a *Account) Freeze() error {
	if err := a.beforeStateChange(a); err != nil {
		return err
	}

	if err := a.CheckRule(accountActiveRule{status: a.status}); err != nil {
		return err
	}

	now := time.Now().UTC()
	a.status = AccountStatusFrozen

	if err := a.CheckInvariants(); err != nil {
		return err
	}

	a.markModified(now)

	a.Record(AccountFrozen{AccountID: a.ID()})

	return nil
}

// CheckInvariants verifies the conditions that must hold before and after
// every mutation. A violation is a defect, not a caller error.
func (a *Account) CheckInvariants() error {
	if a.balance.IsNegative() {
		return &InvariantError{Message: "account balance cannot be negative"}
	}

	if a.totalWithdrawnToday.GreaterThan(a.dailyWithdrawalLimit) {
		return &InvariantError{Message: "daily withdrawal limit has been exceeded"}
	}

	sum := decimal.Zero
	for _, t := range a.ledger {
		sum = sum.Add(t.Signed())
	}

	if !a.balance.Equal(sum) {
		return &InvariantError{Message: "balance does not match ledger sum"}
	}

	return nil
}

func (a *Account) AccountNumber() string {
	return a.accountNumber
}

func (a *Account) HolderName() string {
	return a.holderName
}

func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

func (a *Account) Status() AccountStatus {
	return a.status
}

func (a *Account) DailyWithdrawalLimit() decimal.Decimal {
	return a.dailyWithdrawalLimit
}

func (a *Account) TotalWithdrawnToday() decimal.Decimal {
	return a.totalWithdrawnToday
}

func (a *Account) CreatedAt() time.Time {
	return a.createdAt
}

// Ledger returns a copy of the transaction history in insertion order.
func (a *Account) Ledger() []Transaction {
	ledger := make([]Transaction, len(a.ledger))
	copy(ledger, a.ledger)

	return ledger
}

// AccountSnapshot is the persistence-facing view of an account aggregate.
type AccountSnapshot struct {
	ID                   string                `json:"id"`
	AccountNumber        string                `json:"account_number"`
	HolderName           string                `json:"holder_name"`
	Balance              decimal.Decimal       `json:"balance"`
	Status               AccountStatus         `json:"status"`
	DailyWithdrawalLimit decimal.Decimal       `json:"daily_withdrawal_limit"`
	TotalWithdrawnToday  decimal.Decimal       `json:"total_withdrawn_today"`
	CreatedAt            time.Time             `json:"created_at"`
	LastModified         time.Time             `json:"last_modified"`
	Version              int64                 `json:"version"`
	Ledger               []TransactionSnapshot `json:"ledger,omitempty"`
}

// Snapshot returns the aggregate's persistence-facing view.
func (a *Account) Snapshot() AccountSnapshot {
	ledger := make([]TransactionSnapshot, len(a.ledger))
	for i, t := range a.ledger {
		ledger[i] = t.Snapshot()
	}

	return AccountSnapshot{
		ID:                   a.ID(),
		AccountNumber:        a.accountNumber,
		HolderName:           a.holderName,
		Balance:              a.balance,
		Status:               a.status,
		DailyWithdrawalLimit: a.dailyWithdrawalLimit,
		TotalWithdrawnToday:  a.totalWithdrawnToday,
		CreatedAt:            a.createdAt,
		LastModified:         a.LastModified(),
		Version:              a.Version(),
		Ledger:               ledger,
	}
}

// ReconstructAccount rebuilds an aggregate from previously persisted state.
// Creation-time rules are bypassed, but the aggregate invariants must still
// hold: a corrupt snapshot fails with an *InvariantError at load time
// rather than on the next mutation.
func ReconstructAccount(s AccountSnapshot) (*Account, error) {
	ledger := make([]Transaction, len(s.Ledger))
	for i, ts := range s.Ledger {
		ledger[i] = transactionFromSnapshot(ts)
	}

	a := &Account{
		AggregateRoot:        newAggregateRoot(s.ID, s.LastModified),
		accountNumber:        s.AccountNumber,
		holderName:           s.HolderName,
		balance:              s.Balance,
		status:               s.Status,
		dailyWithdrawalLimit: s.DailyWithdrawalLimit,
		totalWithdrawnToday:  s.TotalWithdrawnToday,
		ledger:               ledger,
		createdAt:            s.CreatedAt,
	}
	a.restore(s.Version, s.LastModified)

	if err := a.CheckInvariants(); err != nil {
		return nil, err
	}

	return a, nil
}

// Business rules. Each rule captures its inputs at construction and is
// evaluated by the aggregate root's gate.

type minimumInitialDepositRule struct {
	amount decimal.Decimal
}

func (r minimumInitialDepositRule) IsSatisfied() bool {
	return r.amount.GreaterThanOrEqual(MinInitialDeposit)
}

func (r minimumInitialDepositRule) Message() string {
	return "initial deposit must be at least $100.00"
}

type validWithdrawalLimitRule struct {
	limit decimal.Decimal
}

func (r validWithdrawalLimitRule) IsSatisfied() bool {
	return r.limit.GreaterThanOrEqual(MinDailyWithdrawalLimit) &&
		r.limit.LessThanOrEqual(MaxDailyWithdrawalLimit)
}

func (r validWithdrawalLimitRule) Message() string {
	return "daily withdrawal limit must be between $1,000 and $10,000"
}

type accountActiveRule struct {
	status AccountStatus
}

func (r accountActiveRule) IsSatisfied() bool {
	return r.status == AccountStatusActive
}

func (r accountActiveRule) Message() string {
	return "account must be active to perform this operation"
}

type minimumDepositRule struct {
	amount decimal.Decimal
}

func (r minimumDepositRule) IsSatisfied() bool {
	return r.amount.GreaterThanOrEqual(MinDepositAmount)
}

func (r minimumDepositRule) Message() string {
	return "minimum deposit amount is $0.01"
}

type sufficientBalanceRule struct {
	balance decimal.Decimal
	amount  decimal.Decimal
}

func (r sufficientBalanceRule) IsSatisfied() bool {
	return r.balance.GreaterThanOrEqual(r.amount)
}

func (r sufficientBalanceRule) Message() string {
	return "insufficient balance for withdrawal"
}

type withinDailyLimitRule struct {
	withdrawnToday decimal.Decimal
	amount         decimal.Decimal
	limit          decimal.Decimal
}

func (r withinDailyLimitRule) IsSatisfied() bool {
	return r.withdrawnToday.Add(r.amount).LessThanOrEqual(r.limit)
}

func (r withinDailyLimitRule) Message() string {
	return "withdrawal would exceed daily limit"
}

type minimumWithdrawalRule struct {
	amount decimal.Decimal
}

func (r minimumWithdrawalRule) IsSatisfied() bool {
	return r.amount.GreaterThanOrEqual(MinWithdrawalAmount)
}

func (r minimumWithdrawalRule) Message() string {
	return "minimum withdrawal amount is $1.00"
}
