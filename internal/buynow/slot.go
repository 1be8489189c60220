// Package buynow holds the single-item slot for the direct "Buy Now" path.
// The slot bypasses the persistent cart entirely: it never merges with cart
// contents and ordinary cart operations never see it.
package buynow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
)

// Slot stores one {item, quantity} record in session-scoped storage.
type Slot struct {
	store kv.Store
	key   string
}

// Key is the session storage key for a device's buy-now slot.
func Key(deviceID string) string {
	return fmt.Sprintf("buy-now:%s", deviceID)
}

func NewSlot(store kv.Store, deviceID string) *Slot {
	return &Slot{store: store, key: Key(deviceID)}
}

// Set overwrites any existing slot value unconditionally. A qty below 1
// counts as 1.
func (s *Slot) Set(ctx context.Context, item domain.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}

	raw, err := json.Marshal(domain.CartLine{Item: item, Quantity: qty})
	if err != nil {
		return fmt.Errorf("marshal buy-now item: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("persist buy-now item: %w", err)
	}
	return nil
}

// Peek reads the current slot without side effects. An empty, expired or
// corrupt slot reads as nil; the checkout orchestrator decides when to clear.
func (s *Slot) Peek(ctx context.Context) (*domain.CartLine, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read buy-now item: %w", err)
	}

	var line domain.CartLine
	if err := json.Unmarshal([]byte(raw), &line); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("buynow: persisted slot corrupt, treating as empty")
		return nil, nil
	}
	return &line, nil
}

// Clear removes the slot's persisted value.
func (s *Slot) Clear(ctx context.Context) error {
	if err := s.store.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear buy-now item: %w", err)
	}
	return nil
}
