// Package device models the locally generated token that associates carts
// and orders with a browsing device, without requiring account login.
package device

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
)

// StorageKey is where the durable store keeps the device token.
const StorageKey = "device-id"

// Provider yields the stable device identifier attached to every order
// submitted from this device.
type Provider interface {
	ID(ctx context.Context) (string, error)
}

// NewID mints a fresh device token.
func NewID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("device: rand.Read: %v", err))
	}
	return "device_" + hex.EncodeToString(buf)
}

// Identity resolves the device identifier once per session from durable
// storage, minting and persisting a new token when none exists. All later
// calls return the same value.
type Identity struct {
	store kv.Store
	once  sync.Once
	id    string
	err   error
}

func NewIdentity(store kv.Store) *Identity {
	return &Identity{store: store}
}

func (i *Identity) ID(ctx context.Context) (string, error) {
	i.once.Do(func() {
		id, err := i.store.Get(ctx, StorageKey)
		if err == nil {
			i.id = id
			return
		}
		if !errors.Is(err, kv.ErrKeyNotFound) {
			i.err = fmt.Errorf("read device id: %w", err)
			return
		}

		id = NewID()
		if err := i.store.Set(ctx, StorageKey, id); err != nil {
			i.err = fmt.Errorf("persist device id: %w", err)
			return
		}
		i.id = id
	})
	return i.id, i.err
}

// Static is a pre-resolved device identifier, used when the token arrives
// from the client with each request.
type Static string

func (s Static) ID(context.Context) (string, error) {
	return string(s), nil
}
