package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// ErrDuplicateAccountNumber is reported when an account number is already
// taken.
var ErrDuplicateAccountNumber = errors.New("account number already exists")

// AccountRepository implements usecase.AccountRepository on PostgreSQL.
//
// The accounts table carries the cached balance, the version counter and
// the daily withdrawal accumulator; account_transactions is the append-only
// ledger. Loading reconstructs the aggregate from both, so a row whose
// balance drifts from its ledger sum fails at read time.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const insertAccountSQL = `
INSERT INTO accounts (
	id, account_number, holder_name, balance, status,
	daily_withdrawal_limit, total_withdrawn_today, version, last_modified, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const insertTransactionSQL = `
INSERT INTO account_transactions (
	id, account_id, kind, amount, description, balance_after, position, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Create persists a freshly opened account together with its opening
// ledger entry.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()
	snapshot := account.Snapshot()

	_, err := pgxTx.Exec(ctx, insertAccountSQL,
		snapshot.ID,
		snapshot.AccountNumber,
		snapshot.HolderName,
		decimalToNumeric(snapshot.Balance),
		snapshot.Status,
		decimalToNumeric(snapshot.DailyWithdrawalLimit),
		decimalToNumeric(snapshot.TotalWithdrawnToday),
		snapshot.Version,
		timeToPgTimestamptz(snapshot.LastModified),
		timeToPgTimestamptz(snapshot.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return ErrDuplicateAccountNumber
		}

		return err
	}

	return r.insertLedgerEntries(ctx, pgxTx, snapshot.ID, snapshot.Ledger, 0)
}

const selectAccountSQL = `
SELECT id, account_number, holder_name, balance, status,
	daily_withdrawal_limit, total_withdrawn_today, version, last_modified, created_at
FROM accounts`

// GetByID retrieves and reconstructs an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, r.pool, selectAccountSQL+" WHERE id = $1", id)
}

// GetByIDTx retrieves an account by ID inside a transaction.
func (r *AccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return r.getBy(ctx, tx.(*Tx).PgxTx(), selectAccountSQL+" WHERE id = $1", id)
}

// GetByAccountNumber retrieves an account by its externally issued number.
func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.getBy(ctx, r.pool, selectAccountSQL+" WHERE account_number = $1", accountNumber)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *AccountRepository) getBy(ctx context.Context, q querier, query string, arg any) (*domain.Account, error) {
	snapshot, err := scanAccount(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	ledger, err := r.loadLedger(ctx, q, snapshot.ID)
	if err != nil {
		return nil, err
	}
	snapshot.Ledger = ledger

	return domain.ReconstructAccount(snapshot)
}

const updateAccountSQL = `
UPDATE accounts
SET balance = $1, status = $2, total_withdrawn_today = $3,
	version = $4, last_modified = $5
WHERE id = $6 AND version = $7`

// Update writes the mutated aggregate back, guarded by a compare-and-swap
// on the version loaded at the start of the cycle. Zero rows affected means
// a concurrent writer advanced the version first.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error {
	pgxTx := tx.(*Tx).PgxTx()
	snapshot := account.Snapshot()

	tag, err := pgxTx.Exec(ctx, updateAccountSQL,
		decimalToNumeric(snapshot.Balance),
		snapshot.Status,
		decimalToNumeric(snapshot.TotalWithdrawnToday),
		snapshot.Version,
		timeToPgTimestamptz(snapshot.LastModified),
		snapshot.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	// The ledger is append-only: only the entries this mutation added are
	// inserted, everything before the persisted count is already on disk.
	var existing int
	if err := pgxTx.QueryRow(ctx,
		"SELECT COUNT(*) FROM account_transactions WHERE account_id = $1",
		snapshot.ID,
	).Scan(&existing); err != nil {
		return err
	}

	return r.insertLedgerEntries(ctx, pgxTx, snapshot.ID, snapshot.Ledger[existing:], existing)
}

func (r *AccountRepository) insertLedgerEntries(ctx context.Context, q querier, accountID string, entries []domain.TransactionSnapshot, startPos int) error {
	for i, entry := range entries {
		_, err := q.Exec(ctx, insertTransactionSQL,
			entry.ID,
			accountID,
			entry.Kind,
			decimalToNumeric(entry.Amount),
			entry.Description,
			decimalToNumeric(entry.BalanceAfter),
			startPos+i,
			timeToPgTimestamptz(entry.Timestamp),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

const selectLedgerSQL = `
SELECT id, kind, amount, description, balance_after, created_at
FROM account_transactions
WHERE account_id = $1
ORDER BY position`

func (r *AccountRepository) loadLedger(ctx context.Context, q querier, accountID string) ([]domain.TransactionSnapshot, error) {
	rows, err := q.Query(ctx, selectLedgerSQL, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledger []domain.TransactionSnapshot

	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		ledger = append(ledger, entry)
	}

	return ledger, rows.Err()
}

// List lists accounts with pagination, newest first.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, selectAccountSQL+" ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.AccountSnapshot

	for rows.Next() {
		snapshot, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(snapshots))
	for _, snapshot := range snapshots {
		ledger, err := r.loadLedger(ctx, r.pool, snapshot.ID)
		if err != nil {
			return nil, err
		}
		snapshot.Ledger = ledger

		account, err := domain.ReconstructAccount(snapshot)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

// ListTransactions returns a page of an account's ledger in insertion order.
func (r *AccountRepository) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionSnapshot, error) {
	rows, err := r.pool.Query(ctx,
		selectLedgerSQL+" LIMIT $2 OFFSET $3",
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TransactionSnapshot

	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

const resetDailyTotalsSQL = `
UPDATE accounts
SET total_withdrawn_today = 0, version = version + 1, last_modified = $1
WHERE total_withdrawn_today <> 0`

// ResetDailyWithdrawnTotals zeroes every non-zero daily withdrawal
// accumulator. Each touched row advances its version so in-flight
// optimistic writers reload.
func (r *AccountRepository) ResetDailyWithdrawnTotals(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, resetDailyTotalsSQL, timeToPgTimestamptz(time.Now().UTC()))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func scanAccount(row pgx.Row) (domain.AccountSnapshot, error) {
	var (
		snapshot     domain.AccountSnapshot
		balance      pgtype.Numeric
		dailyLimit   pgtype.Numeric
		withdrawn    pgtype.Numeric
		lastModified pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.AccountNumber,
		&snapshot.HolderName,
		&balance,
		&snapshot.Status,
		&dailyLimit,
		&withdrawn,
		&snapshot.Version,
		&lastModified,
		&createdAt,
	)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}

	snapshot.Balance = numericToDecimal(balance)
	snapshot.DailyWithdrawalLimit = numericToDecimal(dailyLimit)
	snapshot.TotalWithdrawnToday = numericToDecimal(withdrawn)
	snapshot.LastModified = lastModified.Time
	snapshot.CreatedAt = createdAt.Time

	return snapshot, nil
}

func scanTransaction(row pgx.Row) (domain.TransactionSnapshot, error) {
	var (
		entry        domain.TransactionSnapshot
		amount       pgtype.Numeric
		balanceAfter pgtype.Numeric
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.Kind,
		&amount,
		&entry.Description,
		&balanceAfter,
		&createdAt,
	)
	if err != nil {
		return domain.TransactionSnapshot{}, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.BalanceAfter = numericToDecimal(balanceAfter)
	entry.Timestamp = createdAt.Time

	return entry, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
