package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/checkout"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/pricing"
)

type CheckoutHandler struct {
	sessions *SessionManager
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *SessionManager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type CheckoutSummaryDTO struct {
	Mode           string            `json:"mode"`
	Items          []domain.CartLine `json:"items"`
	Subtotal       int64             `json:"subtotal"`
	Shipping       int64             `json:"shipping"`
	Total          int64             `json:"total"`
	ToFreeShipping int64             `json:"to_free_shipping"`
	FormattedTotal string            `json:"formatted_total"`
}

// Summary shows what Submit would charge for the active mode, without
// mutating anything. The mode query parameter defaults to the cart flow.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	mode := checkout.ParseMode(r.URL.Query().Get("mode"))
	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))

	lines, err := s.Checkout.ActiveLines(ctx, mode)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to read checkout items")
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}

	totals := checkout.ComputeTotals(lines)
	respondJSON(w, http.StatusOK, CheckoutSummaryDTO{
		Mode:           string(mode),
		Items:          lines,
		Subtotal:       totals.Subtotal,
		Shipping:       totals.Shipping,
		Total:          totals.Total,
		ToFreeShipping: totals.ToFreeShipping,
		FormattedTotal: pricing.FormatPrice(totals.Total),
	})
}

// Submit places the order for the active mode. Validation problems come back
// as 400, an empty source or concurrent submit as 409, and an order-storage
// failure as 502 with everything left in place for a retry.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var draft checkout.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	mode := checkout.ParseMode(r.URL.Query().Get("mode"))
	s := h.sessions.Session(ctx, deviceIDFromContext(r.Context()))

	order, err := s.Checkout.Submit(ctx, mode, draft)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) respondSubmitError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	var perr *checkout.PersistenceError

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "invalid_"+verr.Field, verr.Error())
	case errors.Is(err, checkout.ErrEmptyCheckout):
		respondError(w, http.StatusConflict, "empty_checkout", "nothing to checkout")
	case errors.Is(err, checkout.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", "an order submission is already in progress")
	case errors.As(err, &perr):
		respondError(w, http.StatusBadGateway, "order_storage_unavailable", "could not save the order, please try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
