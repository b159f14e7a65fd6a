package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// CartRegistry resolves the cart store of a browser session.
type CartRegistry interface {
	Get(ctx context.Context, sessionID string) (*service.CartStore, error)
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	carts  CartRegistry
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(carts CartRegistry, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// A quantity below 1 adds a single unit.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

// UpdateQuantityRequest is the JSON request body for updating a line's
// quantity. A quantity below 1 leaves the cart unchanged.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// --- Response DTOs ---

// CartResponse is the cart as returned to the UI.
type CartResponse struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Pending   int               `json:"pending"`
}

// MutationResponse reports a settled mutation and the cart after it.
type MutationResponse struct {
	Outcome service.Outcome  `json:"outcome"`
	Item    *domain.CartItem `json:"item,omitempty"`
	Cart    CartResponse     `json:"cart"`
}

func toCartResponse(store *service.CartStore) CartResponse {
	cart := store.Snapshot()
	return CartResponse{
		Items:     cart.Items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		Pending:   store.Pending(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, http.StatusOK, toCartResponse(store))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	res, err := store.AddItem(r.Context(), req.ProductID, req.Quantity)
	h.writeMutation(w, r, store, res, err)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{key}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	res, err := store.UpdateQuantity(r.Context(), chi.URLParam(r, "key"), req.Quantity)
	h.writeMutation(w, r, store, res, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{key}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	res, err := store.RemoveItem(r.Context(), chi.URLParam(r, "key"))
	h.writeMutation(w, r, store, res, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	res, err := store.Clear(r.Context())
	h.writeMutation(w, r, store, res, err)
}

// --- Helpers ---

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*service.CartStore, bool) {
	store, err := h.carts.Get(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return store, true
}

func (h *CartHandler) writeMutation(w http.ResponseWriter, r *http.Request, store *service.CartStore, res service.Result, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, MutationResponse{
		Outcome: res.Outcome,
		Item:    res.Item,
		Cart:    toCartResponse(store),
	})
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrSideEffectFailed) {
		h.logger.WarnContext(r.Context(), "cart mutation side effect failed",
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusBadGateway, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "SIDE_EFFECT_FAILED", Message: err.Error()},
		})
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
