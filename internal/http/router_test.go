package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/catalog"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/orders"
)

// orderStoreMock backs both checkout submission and the order endpoints.
type orderStoreMock struct {
	mu        sync.Mutex
	orders    []*domain.Order
	createErr error
}

func (m *orderStoreMock) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := *order
	m.orders = append(m.orders, &stored)
	return nil
}

func (m *orderStoreMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.orders {
		if o.ID == id {
			out := *o
			return &out, nil
		}
	}
	return nil, orders.ErrOrderNotFound
}

func (m *orderStoreMock) ListByDevice(ctx context.Context, deviceID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].DeviceID == deviceID {
			o := *m.orders[i]
			out = append(out, &o)
		}
	}
	return out, nil
}

func (m *orderStoreMock) ListAll(ctx context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Order, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		o := *m.orders[i]
		out = append(out, &o)
	}
	return out, nil
}

func (m *orderStoreMock) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if o.Status == status {
			out := *o
			return &out, nil
		}
		if !o.Status.CanTransitionTo(status) {
			return nil, orders.ErrInvalidTransition
		}
		o.Status = status
		o.UpdatedAt = time.Now().UTC()
		out := *o
		return &out, nil
	}
	return nil, orders.ErrOrderNotFound
}

func openTestCatalog(t *testing.T) *catalog.Repository {
	t.Helper()

	db, err := catalog.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, catalog.RunMigrations(db, "../catalog/migrations"))
	return catalog.NewRepository(db)
}

func newTestServer(t *testing.T) (chi.Router, *orderStoreMock) {
	t.Helper()

	cat := openTestCatalog(t)
	store := &orderStoreMock{}
	sessions := NewSessionManager(kv.NewMemoryStore(), kv.NewMemoryStore(), store, time.Second)

	timeout := 5 * time.Second
	router := NewRouter(
		NewCartHandler(sessions, cat, timeout),
		NewCheckoutHandler(sessions, timeout),
		NewOrdersHandler(store, timeout),
		NewProductHandler(cat, timeout),
	)
	return router, store
}

func doRequest(t *testing.T, router chi.Router, method, path, deviceID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if deviceID != "" {
		req.Header.Set(DeviceIDHeader, deviceID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}
