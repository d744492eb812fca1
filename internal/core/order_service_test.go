package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

type orderFixture struct {
	svc       OrderService
	carts     CartService
	addresses AddressService
	products  *memProductRepo
	orders    *memOrderRepo
	audit     *memAuditRepo
	cartRepo  *memCartRepo
	cache     *memCache
}

func newOrderFixture(publisher EventPublisher) *orderFixture {
	products := newMemProductRepo(
		models.Product{UniqueID: "vela", Name: "Vela", URL: "vela", Price: 120.5, StockQuantity: 5, Images: []string{"https://img/vela"}},
		models.Product{UniqueID: "jabon", Name: "Jabón", URL: "jabon", Price: 60, StockQuantity: 2},
	)
	cartRepo := newMemCartRepo()
	pricing := NewPricingRules(999, 99, 0)
	addresses := NewAddressService(newMemAddressRepo(), zap.NewNop())
	orders := newMemOrderRepo(products)
	audit := &memAuditRepo{}

	f := &orderFixture{
		carts:     NewCartService(cartRepo, products, pricing, zap.NewNop()),
		addresses: addresses,
		products:  products,
		orders:    orders,
		audit:     audit,
		cartRepo:  cartRepo,
		cache:     newMemCache(),
	}
	f.svc = NewOrderService(orders, cartRepo, products, addresses, pricing, publisher, NewAuditService(audit), f.cache, zap.NewNop())
	return f
}

func (f *orderFixture) address(t *testing.T, userID string) string {
	t.Helper()
	addr, err := f.addresses.CreateAddress(context.Background(), userID, addressReq("Orizaba"))
	require.NoError(t, err)
	return addr.ID
}

func TestOrderService_CreateOrder(t *testing.T) {
	pub := new(MockEventPublisher)
	var wg sync.WaitGroup
	wg.Add(1)
	pub.On("PublishOrderCreated", mock.Anything, mock.AnythingOfType("*models.Order")).
		Return(nil).
		Run(func(args mock.Arguments) {
			o := args.Get(1).(*models.Order)
			assert.Equal(t, "u1", o.OwnerID)
			assert.NotEmpty(t, o.ID)
			wg.Done()
		})

	f := newOrderFixture(pub)
	ctx := context.Background()
	addrID := f.address(t, "u1")
	_, err := f.carts.AddToCart(ctx, "u1", "vela", 2)
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, "u1", "jabon", 1)
	require.NoError(t, err)

	order, err := f.svc.CreateOrder(ctx, "u1", "ana@example.com", addrID)
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, models.OrderPending, order.OrderStatus)
	assert.Equal(t, "Orizaba", order.Address.Street)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "https://img/vela", order.Items[0].Image)
	assert.Equal(t, models.Totals{Subtotal: 301, Shipping: 99, Tax: 0, Total: 400}, order.Totals)

	assert.Equal(t, 3, f.products.stock("vela"))
	assert.Equal(t, 1, f.products.stock("jabon"))

	view, err := f.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines, "cart is cleared after checkout")
	assert.Contains(t, f.audit.actions(), "ORDER_CREATE")
	pub.AssertExpectations(t)
}

func TestOrderService_CreateOrderFailures(t *testing.T) {
	f := newOrderFixture(nil)
	ctx := context.Background()
	addrID := f.address(t, "u1")

	_, err := f.svc.CreateOrder(ctx, "u1", "", addrID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.carts.AddToCart(ctx, "u1", "jabon", 2)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, "u2", "", addrID)
	assert.ErrorIs(t, err, ErrNotFound, "another user's address")

	// Stock sold elsewhere between add-to-cart and checkout.
	f.products.data["jabon"] = models.Product{UniqueID: "jabon", Name: "Jabón", Price: 60, StockQuantity: 1}
	_, err = f.svc.CreateOrder(ctx, "u1", "", addrID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	items, _ := f.cartRepo.List(ctx, "u1", db.ListCart)
	assert.Len(t, items, 1, "cart kept when checkout fails")
	assert.Equal(t, 1, f.products.stock("jabon"))
}

func TestOrderService_PublishFailureIsNotFatal(t *testing.T) {
	pub := new(MockEventPublisher)
	var wg sync.WaitGroup
	wg.Add(1)
	pub.On("PublishOrderCreated", mock.Anything, mock.Anything).
		Return(errors.New("broker down")).
		Run(func(mock.Arguments) { wg.Done() })

	f := newOrderFixture(pub)
	ctx := context.Background()
	addrID := f.address(t, "u1")
	_, err := f.carts.AddToCart(ctx, "u1", "vela", 1)
	require.NoError(t, err)

	order, err := f.svc.CreateOrder(ctx, "u1", "ana@example.com", addrID)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	wg.Wait()
}

func TestOrderService_MyOrdersOwnership(t *testing.T) {
	f := newOrderFixture(nil)
	ctx := context.Background()
	addrID := f.address(t, "u1")
	_, _ = f.carts.AddToCart(ctx, "u1", "vela", 1)
	order, err := f.svc.CreateOrder(ctx, "u1", "", addrID)
	require.NoError(t, err)

	mine, err := f.svc.ListMyOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.GetMyOrder(ctx, "u1", order.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetMyOrder(ctx, "u2", order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(nil)
	ctx := context.Background()
	addrID := f.address(t, "u1")

	place := func() *models.Order {
		_, err := f.carts.AddToCart(ctx, "u1", "vela", 2)
		require.NoError(t, err)
		o, err := f.svc.CreateOrder(ctx, "u1", "", addrID)
		require.NoError(t, err)
		return o
	}

	t.Run("shipping requires tracking", func(t *testing.T) {
		o := place()
		_, err := f.svc.UpdateOrderStatus(ctx, "admin", o.ID, models.UpdateOrderStatusRequest{Status: models.OrderShipped})
		assert.ErrorIs(t, err, ErrInvalidInput)

		shipped, err := f.svc.UpdateOrderStatus(ctx, "admin", o.ID, models.UpdateOrderStatusRequest{
			Status: models.OrderShipped, TrackingNumber: "EST123", Courier: "Estafeta",
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderShipped, shipped.OrderStatus)
		assert.Equal(t, "EST123", shipped.TrackingNumber)

		delivered, err := f.svc.UpdateOrderStatus(ctx, "admin", o.ID, models.UpdateOrderStatusRequest{Status: models.OrderDelivered})
		require.NoError(t, err)
		assert.Equal(t, models.OrderDelivered, delivered.OrderStatus)

		_, err = f.svc.UpdateOrderStatus(ctx, "admin", o.ID, models.UpdateOrderStatusRequest{Status: models.OrderCancelled})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition, "delivered is terminal")
	})

	t.Run("cancel restores stock", func(t *testing.T) {
		before := f.products.stock("vela")
		o := place()
		assert.Equal(t, before-2, f.products.stock("vela"))

		cancelled, err := f.svc.UpdateOrderStatus(ctx, "admin", o.ID, models.UpdateOrderStatusRequest{Status: models.OrderCancelled})
		require.NoError(t, err)
		assert.Equal(t, models.OrderCancelled, cancelled.OrderStatus)
		assert.Equal(t, before, f.products.stock("vela"))

		_, err = f.svc.UpdateOrderStatus(ctx, "admin", o.ID, models.UpdateOrderStatusRequest{Status: models.OrderPending})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("unknown status and order", func(t *testing.T) {
		_, err := f.svc.UpdateOrderStatus(ctx, "admin", "missing", models.UpdateOrderStatusRequest{Status: models.OrderShipped, TrackingNumber: "X"})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.svc.UpdateOrderStatus(ctx, "admin", "missing", models.UpdateOrderStatusRequest{Status: "perdido"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	pending, err := f.svc.ListOrders(ctx, db.OrderFilter{Status: models.OrderDelivered})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	_, err = f.svc.ListOrders(ctx, db.OrderFilter{Status: "perdido"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, f.audit.actions(), "ORDER_STATUS_UPDATE")
}

func TestOrderService_StockChangesInvalidateProductCache(t *testing.T) {
	f := newOrderFixture(nil)
	ctx := context.Background()
	addrID := f.address(t, "u1")
	prime := func() {
		require.NoError(t, f.cache.Set(ctx, cacheKeyProductURLPrefix+"vela", `{"uniqueID":"vela","stockQuantity":5}`, time.Minute))
		require.NoError(t, f.cache.Set(ctx, cacheKeyProductURLPrefix+"jabon", `{"uniqueID":"jabon","stockQuantity":2}`, time.Minute))
	}

	prime()
	_, err := f.carts.AddToCart(ctx, "u1", "vela", 1)
	require.NoError(t, err)
	order, err := f.svc.CreateOrder(ctx, "u1", "", addrID)
	require.NoError(t, err)
	assert.False(t, f.cache.has(cacheKeyProductURLPrefix+"vela"), "placing an order drops the stale stock")
	assert.True(t, f.cache.has(cacheKeyProductURLPrefix+"jabon"), "products outside the order stay cached")

	prime()
	_, err = f.svc.UpdateOrderStatus(ctx, "admin", order.ID, models.UpdateOrderStatusRequest{Status: models.OrderCancelled})
	require.NoError(t, err)
	assert.False(t, f.cache.has(cacheKeyProductURLPrefix+"vela"), "cancelling restores stock")
	assert.True(t, f.cache.has(cacheKeyProductURLPrefix+"jabon"))

	_, err = f.svc.ListOrders(ctx, db.OrderFilter{StartAfter: "ord-404"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderPending, models.OrderShipped, true},
		{models.OrderPending, models.OrderCancelled, true},
		{models.OrderPending, models.OrderDelivered, false},
		{models.OrderShipped, models.OrderDelivered, true},
		{models.OrderShipped, models.OrderCancelled, true},
		{models.OrderShipped, models.OrderPending, false},
		{models.OrderDelivered, models.OrderCancelled, false},
		{models.OrderCancelled, models.OrderPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s → %s", tt.from, tt.to)
	}
}
