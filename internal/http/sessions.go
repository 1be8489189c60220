package http

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/buynow"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/cart"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/checkout"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/device"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
)

// Session bundles the per-device shopping state: the persistent cart, the
// ephemeral buy-now slot and the checkout orchestrator bound to both.
type Session struct {
	DeviceID string
	Cart     *cart.Store
	Slot     *buynow.Slot
	Checkout *checkout.Orchestrator
}

// maxSessions caps how many device sessions stay resident at once. Clients
// control the device-id header, so the map must not grow unboundedly.
const maxSessions = 10_000

// SessionManager lazily materializes one Session per device id, keeping the
// most recently used ones resident. Cart state lives in the durable store, so
// an evicted session rebuilds from storage on the device's next request; the
// buy-now slot lives in the TTL-scoped session store.
type SessionManager struct {
	mu       sync.Mutex
	durable  kv.Store
	session  kv.Store
	orders   checkout.OrderWriter
	timeout  time.Duration
	sessions *lru.Cache[string, *Session]
}

func NewSessionManager(durable, session kv.Store, orders checkout.OrderWriter, submitTimeout time.Duration) *SessionManager {
	cache, err := lru.New[string, *Session](maxSessions)
	if err != nil {
		panic(err)
	}
	return &SessionManager{
		durable:  durable,
		session:  session,
		orders:   orders,
		timeout:  submitTimeout,
		sessions: cache,
	}
}

// Session returns the device's session, loading persisted cart state on
// first access or after eviction.
func (m *SessionManager) Session(ctx context.Context, deviceID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions.Get(deviceID); ok {
		return s
	}

	cartStore := cart.NewStore(ctx, m.durable, deviceID)
	slot := buynow.NewSlot(m.session, deviceID)
	s := &Session{
		DeviceID: deviceID,
		Cart:     cartStore,
		Slot:     slot,
		Checkout: checkout.NewOrchestrator(cartStore, slot, m.orders, device.Static(deviceID), m.timeout),
	}
	m.sessions.Add(deviceID, s)
	return s
}
