package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/adapter/http/handler"
	apimiddleware "github.com/iho/gobank/internal/adapter/http/middleware"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"account_number":"ACC-1","holder_name":"Ada","initial_deposit":"150.00","daily_withdrawal_limit":"1000.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/by-number/{number}",
		"GET /api/v1/accounts/{id}/balance",
		"GET /api/v1/accounts/{id}/statement",
		"POST /api/v1/accounts/{id}/deposits",
		"POST /api/v1/accounts/{id}/withdrawals",
		"POST /api/v1/accounts/{id}/freeze",
		"POST /api/v1/admin/reset-daily-withdrawals",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:  &handler.HealthHandler{},
		AccountHandler: handler.NewAccountHandler(stubAccountService{}),
		AdminHandler:   handler.NewAdminHandler(stubAccountService{}),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct{}

func (stubAccountService) stubAccount() (*domain.Account, error) {
	return domain.OpenAccount(
		"acc",
		"ACC-1",
		"Ada",
		decimal.RequireFromString("150.00"),
		decimal.RequireFromString("1000.00"),
	)
}

func (s stubAccountService) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.stubAccount()
}

func (s stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.stubAccount()
}

func (s stubAccountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.stubAccount()
}

func (stubAccountService) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

func (s stubAccountService) Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Account, error) {
	return s.stubAccount()
}

func (s stubAccountService) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Account, error) {
	return s.stubAccount()
}

func (s stubAccountService) Freeze(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.stubAccount()
}

func (stubAccountService) GetBalance(ctx context.Context, id string) (*usecase.BalanceSnapshot, error) {
	return &usecase.BalanceSnapshot{AccountID: id, Balance: decimal.Zero}, nil
}

func (stubAccountService) GetStatement(ctx context.Context, input usecase.GetStatementInput) ([]domain.TransactionSnapshot, error) {
	return []domain.TransactionSnapshot{}, nil
}

func (stubAccountService) ResetDailyWithdrawals(ctx context.Context) (int64, error) {
	return 0, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
