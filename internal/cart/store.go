// Package cart owns the authoritative line list for the persistent
// "add to cart" flow. State is held in memory and mirrored to the durable
// key-value store on every mutation; reads never touch storage, so a read
// immediately after a mutation always observes it.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
)

type Store struct {
	mu    sync.Mutex
	store kv.Store
	key   string
	lines []domain.CartLine
}

// Key is the durable storage key for a device's cart.
func Key(deviceID string) string {
	return fmt.Sprintf("cart:%s", deviceID)
}

// NewStore loads the previously persisted cart for the device. A missing or
// corrupt persisted value falls back to an empty cart; load problems are
// logged, never surfaced to the caller.
func NewStore(ctx context.Context, store kv.Store, deviceID string) *Store {
	s := &Store{
		store: store,
		key:   Key(deviceID),
	}

	raw, err := store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", s.key).Msg("cart: load failed, starting empty")
		}
		return s
	}

	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("cart: persisted state corrupt, starting empty")
		return s
	}
	s.lines = lines
	return s
}

// AddItem merges by item id: an existing line's quantity is incremented by
// qty, otherwise a new line is appended. A qty below 1 counts as 1.
func (s *Store) AddItem(ctx context.Context, item domain.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.lines {
		if s.lines[i].Item.ID == item.ID {
			s.lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, domain.CartLine{Item: item, Quantity: qty})
	}

	return s.persistLocked(ctx)
}

// RemoveItem deletes the line entirely regardless of quantity. Unknown ids
// are a no-op.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines {
		if line.Item.ID == itemID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// SetQuantity overwrites a line's quantity. Below 1 it behaves exactly like
// RemoveItem. Unknown ids are a no-op, never a create.
func (s *Store) SetQuantity(ctx context.Context, itemID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines {
		if line.Item.ID != itemID {
			continue
		}
		if qty < 1 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = qty
		}
		return s.persistLocked(ctx)
	}
	return nil
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persistLocked(ctx)
}

// Lines returns a copy of the current line list.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalItems is the sum of quantities over all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the sum of price*quantity over all lines, recomputed fresh.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}

// persistLocked mirrors the in-memory lines to durable storage. The caller
// holds the mutex. In-memory state stays applied even when the write fails;
// the error is returned so callers can surface a degraded-persistence signal.
func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(raw)); err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("cart: persist failed")
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
