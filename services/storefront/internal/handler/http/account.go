package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// AccountViewer builds the account view of a user.
type AccountViewer interface {
	GetAccountView(ctx context.Context, rawUserID any) (*service.AccountView, error)
}

// AccountHandler handles HTTP requests for the account page.
type AccountHandler struct {
	accounts AccountViewer
	logger   *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(accounts AccountViewer, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// GetAccount handles GET /api/v1/account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	view, err := h.accounts.GetAccountView(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}
