package handler

import (
	"context"
	"net/http"

	"github.com/iho/gobank/internal/adapter/http/dto"
)

// AdminService defines the behavior needed by AdminHandler.
type AdminService interface {
	ResetDailyWithdrawals(ctx context.Context) (int64, error)
}

// AdminHandler handles administrative HTTP requests.
type AdminHandler struct {
	adminUC AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminUC AdminService) *AdminHandler {
	return &AdminHandler{adminUC: adminUC}
}

// ResetDailyWithdrawals zeroes every account's daily withdrawal
// accumulator. Intended to be called by an external scheduler at the start
// of each calendar day.
func (h *AdminHandler) ResetDailyWithdrawals(w http.ResponseWriter, r *http.Request) {
	affected, err := h.adminUC.ResetDailyWithdrawals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset daily withdrawals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResetDailyResponse{AccountsReset: affected})
}
