package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                   string               `json:"id"`
	AccountNumber        string               `json:"account_number"`
	HolderName           string               `json:"holder_name"`
	Balance              decimal.Decimal      `json:"balance"`
	Status               domain.AccountStatus `json:"status"`
	DailyWithdrawalLimit decimal.Decimal      `json:"daily_withdrawal_limit"`
	TotalWithdrawnToday  decimal.Decimal      `json:"total_withdrawn_today"`
	Version              int64                `json:"version"`
	LastModified         time.Time            `json:"last_modified"`
	CreatedAt            time.Time            `json:"created_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID(),
		AccountNumber:        a.AccountNumber(),
		HolderName:           a.HolderName(),
		Balance:              a.Balance(),
		Status:               a.Status(),
		DailyWithdrawalLimit: a.DailyWithdrawalLimit(),
		TotalWithdrawnToday:  a.TotalWithdrawnToday(),
		Version:              a.Version(),
		LastModified:         a.LastModified(),
		CreatedAt:            a.CreatedAt(),
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse represents a balance snapshot in API responses.
type BalanceResponse struct {
	AccountID string               `json:"account_id"`
	Balance   decimal.Decimal      `json:"balance"`
	Status    domain.AccountStatus `json:"status"`
	Version   int64                `json:"version"`
	AsOf      time.Time            `json:"as_of"`
}

// BalanceFromSnapshot converts a balance snapshot to a response.
func BalanceFromSnapshot(s *usecase.BalanceSnapshot) *BalanceResponse {
	return &BalanceResponse{
		AccountID: s.AccountID,
		Balance:   s.Balance,
		Status:    s.Status,
		Version:   s.Version,
		AsOf:      s.AsOf,
	}
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID           string                 `json:"id"`
	Kind         domain.TransactionKind `json:"kind"`
	Amount       decimal.Decimal        `json:"amount"`
	Description  string                 `json:"description,omitempty"`
	BalanceAfter decimal.Decimal        `json:"balance_after"`
	Timestamp    time.Time              `json:"timestamp"`
}

// TransactionsFromSnapshots converts ledger snapshots to responses.
func TransactionsFromSnapshots(entries []domain.TransactionSnapshot) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		result[i] = &TransactionResponse{
			ID:           e.ID,
			Kind:         e.Kind,
			Amount:       e.Amount,
			Description:  e.Description,
			BalanceAfter: e.BalanceAfter,
			Timestamp:    e.Timestamp,
		}
	}
	return result
}

// StatementResponse represents a page of an account's ledger.
type StatementResponse struct {
	AccountID    string                 `json:"account_id"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// ResetDailyResponse reports how many accounts had their daily withdrawal
// accumulator reset.
type ResetDailyResponse struct {
	AccountsReset int64 `json:"accounts_reset"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
