package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/catalog"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/checkout"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/pricing"
)

type CartHandler struct {
	sessions *SessionManager
	catalog  *catalog.Repository
	timeout  time.Duration
}

func NewCartHandler(sessions *SessionManager, cat *catalog.Repository, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  cat,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Volume selects a single volume of a series; VolumeCount selects
	// volumes 1..n. At most one of the two may be set.
	Volume      int `json:"volume,omitempty"`
	VolumeCount int `json:"volume_count,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items          []domain.CartLine `json:"items"`
	TotalItems     int               `json:"total_items"`
	Subtotal       int64             `json:"subtotal"`
	Shipping       int64             `json:"shipping"`
	Total          int64             `json:"total"`
	ToFreeShipping int64             `json:"to_free_shipping"`
	FormattedTotal string            `json:"formatted_total"`
}

func cartResponse(lines []domain.CartLine) CartResponseDTO {
	totals := checkout.ComputeTotals(lines)
	totalItems := 0
	for _, line := range lines {
		totalItems += line.Quantity
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponseDTO{
		Items:          lines,
		TotalItems:     totalItems,
		Subtotal:       totals.Subtotal,
		Shipping:       totals.Shipping,
		Total:          totals.Total,
		ToFreeShipping: totals.ToFreeShipping,
		FormattedTotal: pricing.FormatPrice(totals.Total),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, cartResponse(s.Cart.Lines()))
}

// resolveLineItem loads the catalog row and applies any volume selection,
// producing the snapshot that goes into the cart or buy-now slot.
func (h *CartHandler) resolveLineItem(ctx context.Context, req AddItemRequestDTO) (domain.Product, error) {
	p, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Product{}, err
	}

	switch {
	case req.Volume > 0:
		return catalog.SingleVolumeLine(*p, req.Volume)
	case req.VolumeCount > 0:
		return catalog.VolumeRangeLine(*p, req.VolumeCount)
	default:
		return *p, nil
	}
}

func (h *CartHandler) decodeAddItem(w http.ResponseWriter, r *http.Request) (AddItemRequestDTO, bool) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return req, false
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must not be empty")
		return req, false
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return req, false
	}
	if req.Volume > 0 && req.VolumeCount > 0 {
		respondError(w, http.StatusBadRequest, "invalid_volume_selection", "volume and volume_count are mutually exclusive")
		return req, false
	}
	return req, true
}

func (h *CartHandler) respondItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, catalog.ErrVolumeOutOfRange):
		respondError(w, http.StatusBadRequest, "invalid_volume_selection", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := h.decodeAddItem(w, r)
	if !ok {
		return
	}

	item, err := h.resolveLineItem(ctx, req)
	if err != nil {
		h.respondItemError(w, err)
		return
	}

	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))
	if err := s.Cart.AddItem(ctx, item, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to persist cart")
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(s.Cart.Lines()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must not be empty")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))
	if err := s.Cart.SetQuantity(ctx, itemID, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to persist cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s.Cart.Lines()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must not be empty")
		return
	}

	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))
	if err := s.Cart.RemoveItem(ctx, itemID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to persist cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s.Cart.Lines()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))
	if err := s.Cart.Clear(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to persist cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s.Cart.Lines()))
}

// BuyNow loads the product into the single-item slot, bypassing the cart.
func (h *CartHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := h.decodeAddItem(w, r)
	if !ok {
		return
	}

	item, err := h.resolveLineItem(ctx, req)
	if err != nil {
		h.respondItemError(w, err)
		return
	}

	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))
	if err := s.Slot.Set(ctx, item, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to persist buy-now selection")
		return
	}

	line, err := s.Slot.Peek(ctx)
	if err != nil || line == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read buy-now selection")
		return
	}
	respondJSON(w, http.StatusCreated, cartResponse([]domain.CartLine{*line}))
}
