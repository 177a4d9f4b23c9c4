package usecase

import (
	"context"
	"time"

	"github.com/iho/gobank/internal/domain"
)

// AccountRepository defines data access for account aggregates.
//
// Update must implement compare-and-swap semantics: the write succeeds only
// when the stored version equals expectedVersion, and reports
// domain.ErrVersionConflict otherwise. Loading goes through
// domain.ReconstructAccount, so a corrupt row surfaces as an invariant
// violation at load time.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account, expectedVersion int64) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionSnapshot, error)
	ResetDailyWithdrawnTotals(ctx context.Context) (int64, error)
}

// OutboxRepository defines data access for facts awaiting delivery.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Retrier re-runs an operation when it fails with a transient error, such
// as a write conflict detected by the optimistic version check. Errors it
// classifies as permanent are returned unchanged.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
