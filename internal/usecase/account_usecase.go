package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// AccountUseCase drives the account aggregate: it owns the
// read-modify-write loop around every mutation and delivers the facts the
// aggregate records into the outbox, within the same transaction as the
// state change.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
	retrier     Retrier
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil to
// disable the balance cache; retrier may be nil to disable conflict
// retries.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
		retrier:     retrier,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	AccountNumber        string
	HolderName           string
	InitialDeposit       decimal.Decimal
	DailyWithdrawalLimit decimal.Decimal
}

// OpenAccount creates a new account and stores it together with its
// opening fact.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	account, err := domain.OpenAccount(
		uc.idGen.Generate(),
		input.AccountNumber,
		input.HolderName,
		input.InitialDeposit,
		input.DailyWithdrawalLimit,
	)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.enqueueFacts(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// Deposit credits an account.
func (uc *AccountUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Account, error) {
	return uc.mutate(ctx, input.AccountID, func(account *domain.Account) error {
		return account.Deposit(input.Amount, input.Description)
	})
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// Withdraw debits an account.
func (uc *AccountUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Account, error) {
	return uc.mutate(ctx, input.AccountID, func(account *domain.Account) error {
		return account.Withdraw(input.Amount, input.Description)
	})
}

// Freeze transitions an account to the frozen state.
func (uc *AccountUseCase) Freeze(ctx context.Context, accountID string) (*domain.Account, error) {
	return uc.mutate(ctx, accountID, func(account *domain.Account) error {
		return account.Freeze()
	})
}

// mutate runs one read-modify-write cycle: load and reconstruct the
// aggregate, apply the operation, write back with a compare-and-swap on
// the loaded version, and enqueue the recorded facts in the same
// transaction. A version conflict means a concurrent writer won; the
// retrier reloads and replays the whole cycle.
func (uc *AccountUseCase) mutate(ctx context.Context, accountID string, op func(*domain.Account) error) (*domain.Account, error) {
	var account *domain.Account

	cycle := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		loaded, err := uc.accountRepo.GetByIDTx(ctx, tx, accountID)
		if err != nil {
			return err
		}

		loadedVersion := loaded.Version()

		if err := op(loaded); err != nil {
			return err
		}

		if err := uc.accountRepo.Update(ctx, tx, loaded, loadedVersion); err != nil {
			return err
		}

		if err := uc.enqueueFacts(ctx, tx, loaded); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		account = loaded

		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, cycle)
	} else {
		err = cycle()
	}

	if err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, accountID)

	return account, nil
}

// enqueueFacts drains the aggregate's recorded facts into the outbox.
func (uc *AccountUseCase) enqueueFacts(ctx context.Context, tx Transaction, account *domain.Account) error {
	now := time.Now().UTC()

	for _, event := range account.PullEvents() {
		outboxEvent := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   event.AggregateID(),
			AggregateType: domain.AggregateTypeAccount,
			EventType:     event.EventType(),
			Payload:       event,
			CreatedAt:     now,
		}

		if err := uc.outboxRepo.Create(ctx, tx, outboxEvent); err != nil {
			return err
		}
	}

	return nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByNumber retrieves an account by its externally issued number.
func (uc *AccountUseCase) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.accountRepo.GetByAccountNumber(ctx, accountNumber)
}

// BalanceSnapshot is a cacheable point-in-time view of an account balance.
type BalanceSnapshot struct {
	AccountID string               `json:"account_id"`
	Balance   decimal.Decimal      `json:"balance"`
	Status    domain.AccountStatus `json:"status"`
	Version   int64                `json:"version"`
	AsOf      time.Time            `json:"as_of"`
}

// GetBalance returns the account balance, served from the cache when a
// fresh snapshot is available. Mutations invalidate the cached entry, so a
// hit is at most balanceCacheTTL stale.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id string) (*BalanceSnapshot, error) {
	key := balanceCachePrefix + id

	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, key); err == nil && raw != nil {
			var snapshot BalanceSnapshot
			if err := json.Unmarshal(raw, &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &BalanceSnapshot{
		AccountID: account.ID(),
		Balance:   account.Balance(),
		Status:    account.Status(),
		Version:   account.Version(),
		AsOf:      time.Now().UTC(),
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(snapshot); err == nil {
			_ = uc.cache.Set(ctx, key, raw, balanceCacheTTL)
		}
	}

	return snapshot, nil
}

func (uc *AccountUseCase) invalidateBalance(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}

	// Best effort: a stale entry expires on its own after the TTL.
	_ = uc.cache.Delete(ctx, balanceCachePrefix+id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, limit, offset)
}

// GetStatementInput represents input for reading an account's ledger.
type GetStatementInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// GetStatement returns a page of the account's ledger in insertion order.
func (uc *AccountUseCase) GetStatement(ctx context.Context, input GetStatementInput) ([]domain.TransactionSnapshot, error) {
	// Ensure the account exists so an unknown ID maps to not-found rather
	// than an empty page.
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := clampPage(input.Limit, input.Offset)

	return uc.accountRepo.ListTransactions(ctx, input.AccountID, limit, offset)
}

// ResetDailyWithdrawals zeroes every account's daily withdrawal
// accumulator and returns the number of accounts touched. The aggregate
// never resets the accumulator itself; an external scheduler is expected
// to call this once per calendar day.
func (uc *AccountUseCase) ResetDailyWithdrawals(ctx context.Context) (int64, error) {
	return uc.accountRepo.ResetDailyWithdrawnTotals(ctx)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
