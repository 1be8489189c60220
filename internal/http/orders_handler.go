package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/orders"
)

// OrderStore is the slice of the orders repository the HTTP layer reads and
// administers through.
type OrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByDevice(ctx context.Context, deviceID string) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	store   OrderStore
	timeout time.Duration
}

func NewOrdersHandler(store OrderStore, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		store:   store,
		timeout: timeout,
	}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// ListMine returns the requesting device's orders, newest first.
func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	got, err := h.store.ListByDevice(ctx, deviceIDFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	if got == nil {
		got = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, got)
}

// ListAll is the admin view over every device's orders.
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	got, err := h.store.ListAll(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	if got == nil {
		got = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, got)
}

func (h *OrdersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.store.GetByID(ctx, id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// UpdateStatus moves an order along the fulfilment lifecycle. Steps outside
// the allowed transition table are rejected with 409.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	order, err := h.store.UpdateStatus(ctx, id, status)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, orders.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update order")
	default:
		respondJSON(w, http.StatusOK, order)
	}
}
