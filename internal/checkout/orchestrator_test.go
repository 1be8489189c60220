package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/buynow"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/cart"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/device"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/domain"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
)

// mockOrderWriter records created orders in memory.
type mockOrderWriter struct {
	mu      sync.Mutex
	orders  []*domain.Order
	err     error
	blockCh chan struct{} // when set, Create blocks until the channel closes
}

func (m *mockOrderWriter) Create(ctx context.Context, order *domain.Order) error {
	if m.blockCh != nil {
		<-m.blockCh
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *mockOrderWriter) last() *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.orders) == 0 {
		return nil
	}
	return m.orders[len(m.orders)-1]
}

type testSession struct {
	cart   *cart.Store
	slot   *buynow.Slot
	writer *mockOrderWriter
	orch   *Orchestrator
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemoryStore()
	cartStore := cart.NewStore(ctx, store, "device_test")
	slot := buynow.NewSlot(store, "device_test")
	writer := &mockOrderWriter{}
	orch := NewOrchestrator(cartStore, slot, writer, device.Static("device_test"), 0)
	return &testSession{cart: cartStore, slot: slot, writer: writer, orch: orch}
}

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:     id,
		Title:  "Title " + id,
		Author: "Author",
		Price:  price,
		Image:  "/images/" + id + ".jpg",
	}
}

func validDraft() Draft {
	return Draft{
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		Pincode:      "560038",
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeBuyNow, ParseMode("buynow"))
	assert.Equal(t, ModeCart, ParseMode("cart"))
	assert.Equal(t, ModeCart, ParseMode(""))
	assert.Equal(t, ModeCart, ParseMode("BuyNow"))
}

func TestComputeTotals_FreeShippingAtThreshold(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		shipping int64
	}{
		{"below threshold", 1999, 150},
		{"at threshold", 2000, 0},
		{"above threshold", 2001, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []domain.CartLine{{Item: product("p1", tt.subtotal), Quantity: 1}}
			got := ComputeTotals(lines)
			assert.Equal(t, tt.subtotal, got.Subtotal)
			assert.Equal(t, tt.shipping, got.Shipping)
			assert.Equal(t, tt.subtotal+tt.shipping, got.Total)
		})
	}
}

func TestComputeTotals_EmptyLineList(t *testing.T) {
	// an empty source must not be charged the flat shipping fee
	for _, lines := range [][]domain.CartLine{nil, {}} {
		got := ComputeTotals(lines)
		assert.Equal(t, int64(0), got.Subtotal)
		assert.Equal(t, int64(0), got.Shipping)
		assert.Equal(t, int64(0), got.Total)
		assert.Equal(t, int64(0), got.ToFreeShipping)
	}
}

func TestSubmit_CartModeFreeShipping(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("vagabond-vol-1", 1200), 1))
	require.NoError(t, s.cart.AddItem(ctx, product("berserk-vol-1", 900), 2))

	order, err := s.orch.Submit(ctx, ModeCart, validDraft())
	require.NoError(t, err)

	assert.Equal(t, int64(3000), order.TotalPrice)
	assert.Equal(t, int64(0), order.ShippingCost)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "device_test", order.DeviceID)
	assert.NotEqual(t, uuid.Nil, order.ID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, s.writer.count())
}

func TestSubmit_BelowThresholdAddsFlatFee(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("one-shot", 500), 1))

	order, err := s.orch.Submit(ctx, ModeCart, validDraft())
	require.NoError(t, err)

	assert.Equal(t, int64(150), order.ShippingCost)
	assert.Equal(t, int64(650), order.TotalPrice)
}

func TestSubmit_ClearsCartAfterSuccess(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))

	_, err := s.orch.Submit(ctx, ModeCart, validDraft())
	require.NoError(t, err)

	assert.Empty(t, s.cart.Lines())
}

func TestSubmit_BuyNowBypassesCart(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 300), 1))
	require.NoError(t, s.cart.AddItem(ctx, product("p2", 300), 1))
	require.NoError(t, s.cart.AddItem(ctx, product("p3", 300), 1))
	require.NoError(t, s.slot.Set(ctx, product("katana", 2500), 1))

	order, err := s.orch.Submit(ctx, ModeBuyNow, validDraft())
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "katana", order.Items[0].ProductID)
	assert.Equal(t, int64(2500), order.TotalPrice)

	// the cart is untouched, the slot is consumed
	assert.Len(t, s.cart.Lines(), 3)
	line, err := s.slot.Peek(ctx)
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestSubmit_CartModeLeavesSlotAlone(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))
	require.NoError(t, s.slot.Set(ctx, product("katana", 2500), 1))

	_, err := s.orch.Submit(ctx, ModeCart, validDraft())
	require.NoError(t, err)

	line, err := s.slot.Peek(ctx)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "katana", line.Item.ID)
}

func TestSubmit_EmptyCart(t *testing.T) {
	s := newTestSession(t)

	_, err := s.orch.Submit(context.Background(), ModeCart, validDraft())
	assert.ErrorIs(t, err, ErrEmptyCheckout)
	assert.Equal(t, 0, s.writer.count())
}

func TestSubmit_EmptyBuyNowSlot(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))

	_, err := s.orch.Submit(ctx, ModeBuyNow, validDraft())
	assert.ErrorIs(t, err, ErrEmptyCheckout)
}

func TestSubmit_InvalidDraftNeverReachesWriter(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))

	draft := validDraft()
	draft.Email = "not-an-email"

	_, err := s.orch.Submit(ctx, ModeCart, draft)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, 0, s.writer.count())
	assert.Len(t, s.cart.Lines(), 1)
}

func TestSubmit_PersistenceFailurePreservesState(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 2))
	s.writer.err = errors.New("connection refused")

	_, err := s.orch.Submit(ctx, ModeCart, validDraft())

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Len(t, s.cart.Lines(), 1)

	// retry succeeds once the collaborator recovers
	s.writer.mu.Lock()
	s.writer.err = nil
	s.writer.mu.Unlock()

	order, err := s.orch.Submit(ctx, ModeCart, validDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(1150), order.TotalPrice)
	assert.Empty(t, s.cart.Lines())
}

func TestSubmit_ExclusiveWhileInFlight(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))

	block := make(chan struct{})
	s.writer.blockCh = block

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.orch.Submit(ctx, ModeCart, validDraft())
		firstDone <- err
	}()

	// wait for the first submit to be inside the writer call
	require.Eventually(t, func() bool {
		return s.orch.submitting.Load()
	}, time.Second, 5*time.Millisecond)

	_, err := s.orch.Submit(ctx, ModeCart, validDraft())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(block)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, s.writer.count())
}

func TestSubmit_OrderIsFrozenSnapshot(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))

	order, err := s.orch.Submit(ctx, ModeCart, validDraft())
	require.NoError(t, err)

	// later cart activity must not leak into the persisted order
	require.NoError(t, s.cart.AddItem(ctx, product("p2", 9000), 3))

	got := s.writer.last()
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, int64(650), got.TotalPrice)
	assert.Equal(t, order.ID, got.ID)
}

func TestSubmit_AddressJoinedOnOrder(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.cart.AddItem(ctx, product("p1", 500), 1))

	draft := validDraft()
	draft.AddressLine2 = "Indiranagar"

	order, err := s.orch.Submit(ctx, ModeCart, draft)
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road, Indiranagar, Bengaluru, Karnataka, 560038", order.CustomerAddress)
}

func TestActiveLines_BuyNowSingleLine(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.slot.Set(ctx, product("katana", 2500), 2))

	lines, err := s.orch.ActiveLines(ctx, ModeBuyNow)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestActiveTotals_EmptySource(t *testing.T) {
	s := newTestSession(t)

	totals, err := s.orch.ActiveTotals(context.Background(), ModeCart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(0), totals.Shipping)
	assert.Equal(t, int64(0), totals.Total)
	assert.Equal(t, int64(0), totals.ToFreeShipping)
}
