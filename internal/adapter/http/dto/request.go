package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/usecase"
)

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	AccountNumber        string          `json:"account_number"`
	HolderName           string          `json:"holder_name"`
	InitialDeposit       decimal.Decimal `json:"initial_deposit"`
	DailyWithdrawalLimit decimal.Decimal `json:"daily_withdrawal_limit"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		AccountNumber:        r.AccountNumber,
		HolderName:           r.HolderName,
		InitialDeposit:       r.InitialDeposit,
		DailyWithdrawalLimit: r.DailyWithdrawalLimit,
	}
}

// AmountRequest represents a deposit or withdrawal request.
type AmountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
