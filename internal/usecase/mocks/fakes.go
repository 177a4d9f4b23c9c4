package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// FakeAccountRepository is a mock implementation of AccountRepository.
// Without Func overrides it behaves as an in-memory store keyed by ID and
// account number, including the compare-and-swap version check on Update.
type FakeAccountRepository struct {
	mu        sync.RWMutex
	snapshots map[string]domain.AccountSnapshot

	CreateFunc                    func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc                   func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTxFunc                 func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByAccountNumberFunc        func(ctx context.Context, accountNumber string) (*domain.Account, error)
	UpdateFunc                    func(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error
	ListFunc                      func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListTransactionsFunc          func(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionSnapshot, error)
	ResetDailyWithdrawnTotalsFunc func(ctx context.Context) (int64, error)
}

func NewFakeAccountRepository() *FakeAccountRepository {
	return &FakeAccountRepository{
		snapshots: make(map[string]domain.AccountSnapshot),
	}
}

func (m *FakeAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[account.ID()] = account.Snapshot()
	return nil
}

func (m *FakeAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return domain.ReconstructAccount(snapshot)
}

func (m *FakeAccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDTxFunc != nil {
		return m.GetByIDTxFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *FakeAccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if m.GetByAccountNumberFunc != nil {
		return m.GetByAccountNumberFunc(ctx, accountNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, snapshot := range m.snapshots {
		if snapshot.AccountNumber == accountNumber {
			return domain.ReconstructAccount(snapshot)
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *FakeAccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, account, expectedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.snapshots[account.ID()]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	m.snapshots[account.ID()] = account.Snapshot()
	return nil
}

func (m *FakeAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, snapshot := range m.snapshots {
		account, err := domain.ReconstructAccount(snapshot)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (m *FakeAccountRepository) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionSnapshot, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	ledger := snapshot.Ledger
	if offset >= len(ledger) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ledger) {
		end = len(ledger)
	}
	return ledger[offset:end], nil
}

func (m *FakeAccountRepository) ResetDailyWithdrawnTotals(ctx context.Context) (int64, error) {
	if m.ResetDailyWithdrawnTotalsFunc != nil {
		return m.ResetDailyWithdrawnTotalsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for id, snapshot := range m.snapshots {
		if snapshot.TotalWithdrawnToday.IsZero() {
			continue
		}
		snapshot.TotalWithdrawnToday = snapshot.TotalWithdrawnToday.Sub(snapshot.TotalWithdrawnToday)
		snapshot.Version++
		m.snapshots[id] = snapshot
		affected++
	}
	return affected, nil
}

// Stored returns the persisted snapshot for assertions.
func (m *FakeAccountRepository) Stored(id string) (domain.AccountSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[id]
	return snapshot, ok
}

// FakeOutboxRepository is a mock implementation of OutboxRepository.
type FakeOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewFakeOutboxRepository() *FakeOutboxRepository {
	return &FakeOutboxRepository{}
}

func (m *FakeOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *FakeOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var unpublished []*domain.OutboxEvent
	for _, event := range m.Events {
		if !event.Published {
			unpublished = append(unpublished, event)
		}
		if len(unpublished) == limit {
			break
		}
	}
	return unpublished, nil
}

func (m *FakeOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.Events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
		}
	}
	return nil
}

// FakeTransaction is a mock implementation of Transaction.
type FakeTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *FakeTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *FakeTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// FakeTransactionManager is a mock implementation of TransactionManager.
type FakeTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewFakeTransactionManager() *FakeTransactionManager {
	return &FakeTransactionManager{}
}

func (m *FakeTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &FakeTransaction{}, nil
}

// FakeIDGenerator is a mock implementation of IDGenerator.
type FakeIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (m *FakeIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// FakeCache is a mock implementation of Cache backed by a map.
type FakeCache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewFakeCache() *FakeCache {
	return &FakeCache{entries: make(map[string][]byte)}
}

func (m *FakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (m *FakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *FakeCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// PassthroughRetrier runs the operation once without retrying.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}
