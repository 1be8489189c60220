// Package checkout reconciles the two purchase paths, the persistent cart
// and the single-item buy-now slot, into one submission flow. Whichever
// source is active is snapshotted, totalled once and handed to the order
// collaborator; the consumed source is cleared only after the order
// persists.
package checkout

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/buynow"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/cart"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/device"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/pricing"
)

// Mode selects the active item source for one checkout attempt.
type Mode string

const (
	ModeCart   Mode = "cart"
	ModeBuyNow Mode = "buynow"
)

// ParseMode maps the checkout entry parameter to a mode. Anything other
// than "buynow" is the ordinary cart flow.
func ParseMode(s string) Mode {
	if s == string(ModeBuyNow) {
		return ModeBuyNow
	}
	return ModeCart
}

// OrderWriter is the slice of the order collaborator the orchestrator needs.
type OrderWriter interface {
	Create(ctx context.Context, order *domain.Order) error
}

// Totals is the chargeable breakdown for the active items.
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	Shipping       int64 `json:"shipping"`
	Total          int64 `json:"total"`
	ToFreeShipping int64 `json:"to_free_shipping"`
}

// ComputeTotals derives the breakdown from a line list. Shipping is free at
// or above the threshold, a flat fee below it. An empty list is the
// empty-state render: nothing to charge, so no shipping fee and no
// free-shipping nudge.
func ComputeTotals(lines []domain.CartLine) Totals {
	if len(lines) == 0 {
		return Totals{}
	}

	var subtotal int64
	for _, line := range lines {
		subtotal += line.Subtotal()
	}
	shipping := pricing.ShippingCost(subtotal)
	return Totals{
		Subtotal:       subtotal,
		Shipping:       shipping,
		Total:          subtotal + shipping,
		ToFreeShipping: pricing.AmountToFreeShipping(subtotal),
	}
}

type Orchestrator struct {
	cart    *cart.Store
	slot    *buynow.Slot
	orders  OrderWriter
	device  device.Provider
	breaker *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration

	submitting atomic.Bool
}

// DefaultSubmitTimeout bounds the order-creation call.
const DefaultSubmitTimeout = 10 * time.Second

func NewOrchestrator(cartStore *cart.Store, slot *buynow.Slot, orders OrderWriter, dev device.Provider, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Orchestrator{
		cart:   cartStore,
		slot:   slot,
		orders: orders,
		device: dev,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    "order-submission",
			Timeout: 30 * time.Second,
		}),
		timeout: timeout,
	}
}

// ActiveLines is the item list for the given mode. An empty cart or an
// empty/expired buy-now slot yields an empty slice, never an error; the
// caller renders the empty-checkout state from it.
func (o *Orchestrator) ActiveLines(ctx context.Context, mode Mode) ([]domain.CartLine, error) {
	if mode == ModeBuyNow {
		line, err := o.slot.Peek(ctx)
		if err != nil {
			return nil, err
		}
		if line == nil {
			return nil, nil
		}
		return []domain.CartLine{*line}, nil
	}
	return o.cart.Lines(), nil
}

// ActiveTotals computes the breakdown for the given mode's current items.
func (o *Orchestrator) ActiveTotals(ctx context.Context, mode Mode) (Totals, error) {
	lines, err := o.ActiveLines(ctx, mode)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(lines), nil
}

// Submit validates the draft, snapshots the active items, persists the order
// and clears the consumed source. Exactly one submission may be in flight;
// concurrent attempts fail fast with ErrSubmitInFlight. On a persistence
// failure the draft, cart and slot are all left untouched so the shopper can
// retry without re-entering anything.
func (o *Orchestrator) Submit(ctx context.Context, mode Mode, draft Draft) (*domain.Order, error) {
	if !o.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer o.submitting.Store(false)

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	lines, err := o.ActiveLines(ctx, mode)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCheckout
	}

	deviceID, err := o.device.ID(ctx)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ProductID: line.Item.ID,
			Title:     line.Item.Title,
			Author:    line.Item.Author,
			Price:     line.Item.Price,
			Quantity:  line.Quantity,
			Image:     line.Item.Image,
		})
	}

	totals := ComputeTotals(lines)
	order := &domain.Order{
		ID:              uuid.New(),
		DeviceID:        deviceID,
		CustomerName:    draft.Name,
		CustomerEmail:   draft.Email,
		CustomerPhone:   draft.Phone,
		CustomerAddress: draft.FullAddress(),
		Items:           items,
		TotalPrice:      totals.Total,
		ShippingCost:    totals.Shipping,
		Status:          domain.OrderStatusPending,
	}

	submitCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	_, err = o.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, o.orders.Create(submitCtx, order)
	})
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Str("mode", string(mode)).Msg("checkout: order submission failed")
		return nil, &PersistenceError{Err: err}
	}

	// Only the consumed source is cleared; a buy-now purchase leaves the
	// cart exactly as it was. Clear failures are logged, not surfaced: the
	// order is already placed.
	switch mode {
	case ModeBuyNow:
		if err := o.slot.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("checkout: failed to clear buy-now slot after order")
		}
	default:
		if err := o.cart.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("checkout: failed to clear cart after order")
		}
	}

	log.Info().
		Stringer("order_id", order.ID).
		Str("device_id", deviceID).
		Str("mode", string(mode)).
		Int64("total_price", order.TotalPrice).
		Msg("checkout: order placed")

	return order, nil
}
