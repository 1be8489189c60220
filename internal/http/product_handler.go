package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/catalog"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/pricing"
)

type ProductHandler struct {
	catalog *catalog.Repository
	timeout time.Duration
}

func NewProductHandler(cat *catalog.Repository, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		timeout: timeout,
	}
}

type ProductDTO struct {
	domain.Product
	FormattedPrice  string `json:"formatted_price"`
	DiscountPercent int    `json:"discount_percent"`
}

func productDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		Product:         p,
		FormattedPrice:  pricing.FormatPrice(p.Price),
		DiscountPercent: pricing.DiscountPercent(p.Price, p.OriginalPrice),
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		products []domain.Product
		err      error
	)
	if kind := r.URL.Query().Get("kind"); kind != "" {
		products, err = h.catalog.ListProductsByKind(ctx, domain.Kind(kind))
	} else {
		products, err = h.catalog.ListProducts(ctx)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}

	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, productDTO(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "product_id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}
	respondJSON(w, http.StatusOK, productDTO(*p))
}

type VerifyCouponRequestDTO struct {
	Code string `json:"code"`
}

type VerifyCouponResponseDTO struct {
	Valid           bool `json:"valid"`
	DiscountPercent int  `json:"discount_percent"`
}

// VerifyCoupon answers whether a code grants a discount. Unknown codes are a
// normal not-valid answer, not an error.
func (h *ProductHandler) VerifyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VerifyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.catalog.VerifyCoupon(ctx, req.Code)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to verify coupon")
		return
	}
	respondJSON(w, http.StatusOK, VerifyCouponResponseDTO{
		Valid:           result.Valid,
		DiscountPercent: result.DiscountPercent,
	})
}
