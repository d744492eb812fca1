package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
	"storefront-backend-go/pkg/cache"
)

const (
	maxOrderPageSize = 100
	publishTimeout   = 10 * time.Second
)

// orderService implements the OrderService interface.
type orderService struct {
	orderRepo    db.OrderRepository
	cartRepo     db.CartRepository
	productRepo  db.ProductRepository
	addresses    AddressService
	pricing      PricingRules
	publisher    EventPublisher
	auditService AuditService
	cache        *jsonCache
	logger       *zap.Logger
}

// NewOrderService creates a new OrderService instance. publisher and backend may be nil.
// backend is the product cache, which is invalidated whenever an order moves stock.
func NewOrderService(
	or db.OrderRepository,
	cr db.CartRepository,
	pr db.ProductRepository,
	as AddressService,
	pricing PricingRules,
	publisher EventPublisher,
	audit AuditService,
	backend cache.Cache,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:    or,
		cartRepo:     cr,
		productRepo:  pr,
		addresses:    as,
		pricing:      pricing,
		publisher:    publisher,
		auditService: audit,
		cache:        newJSONCache(backend, 0, logger),
		logger:       logger,
	}
}

// CreateOrder turns the caller's cart into an order shipped to one of their addresses.
// Stock is re-checked and decremented atomically with the order write.
func (s *orderService) CreateOrder(ctx context.Context, userID, email, addressID string) (*models.Order, error) {
	addr, err := s.addresses.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	items, err := s.cartRepo.List(ctx, userID, db.ListCart)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.UniqueID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart products: %w", err)
	}
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.UniqueID] = p
	}

	lines := make([]models.OrderLine, 0, len(items))
	priced := make([]PricedLine, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.UniqueID]
		if !ok {
			return nil, fmt.Errorf("%w: product '%s' is no longer available", ErrInvalidReference, it.UniqueID)
		}
		if err := checkStock(p, it.Qty); err != nil {
			return nil, err
		}
		line := models.OrderLine{UniqueID: p.UniqueID, Name: p.Name, Price: p.Price, Qty: it.Qty}
		if len(p.Images) > 0 {
			line.Image = p.Images[0]
		}
		lines = append(lines, line)
		priced = append(priced, PricedLine{Price: p.Price, Qty: it.Qty})
	}

	now := time.Now().UTC()
	order := &models.Order{
		OwnerID:     userID,
		Email:       email,
		Address:     *addr,
		Items:       lines,
		Totals:      s.pricing.ComputeTotals(priced),
		OrderStatus: models.OrderPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.orderRepo.Place(ctx, order); err != nil {
		return nil, repoErr(err, "place order")
	}
	s.invalidateProducts(ctx, products)

	if err := s.cartRepo.Clear(ctx, userID, db.ListCart); err != nil {
		s.logger.Warn("order placed but cart could not be cleared", zap.String("orderID", order.ID), zap.Error(err))
	}

	recordAudit(ctx, s.auditService, s.logger, userID, "ORDER_CREATE", "orders", order.ID,
		map[string]interface{}{"total": order.Totals.Total, "items": len(order.Items)})
	s.publishCreated(order)

	s.logger.Info("order placed",
		zap.String("orderID", order.ID),
		zap.String("userID", userID),
		zap.Float64("total", order.Totals.Total))
	return order, nil
}

// publishCreated emits order.created in the background. The request context is not
// reused because it ends with the response.
func (s *orderService) publishCreated(order *models.Order) {
	if s.publisher == nil {
		return
	}
	snapshot := *order
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishOrderCreated(ctx, &snapshot); err != nil {
			s.logger.Error("failed to publish order.created", zap.String("orderID", snapshot.ID), zap.Error(err))
		}
	}()
}

func (s *orderService) ListMyOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetMyOrder returns ErrNotFound for orders placed by someone else.
func (s *orderService) GetMyOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != userID {
		return nil, fmt.Errorf("%w: order '%s'", ErrNotFound, id)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter db.OrderFilter) ([]*models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > maxOrderPageSize {
		filter.Limit = maxOrderPageSize
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, repoErr(err, "failed to list orders")
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("order '%s'", id))
	}
	return order, nil
}

// UpdateOrderStatus moves an order along pendiente → enviado → entregado, or to cancelado
// from either non-terminal state. Shipping requires a tracking number.
func (s *orderService) UpdateOrderStatus(ctx context.Context, adminID, id string, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrInvalidInput, req.Status)
	}
	tracking := strings.TrimSpace(req.TrackingNumber)
	courier := strings.TrimSpace(req.Courier)

	var previous models.OrderStatus
	order, err := s.orderRepo.Transition(ctx, id, func(o *models.Order) error {
		previous = o.OrderStatus
		if !o.OrderStatus.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s → %s", ErrInvalidStatusTransition, o.OrderStatus, req.Status)
		}
		if tracking != "" {
			o.TrackingNumber = tracking
		}
		if courier != "" {
			o.Courier = courier
		}
		if req.Status == models.OrderShipped && o.TrackingNumber == "" {
			return fmt.Errorf("%w: trackingNumber is required to mark an order as %s", ErrInvalidInput, models.OrderShipped)
		}
		o.OrderStatus = req.Status
		return nil
	})
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("order '%s'", id))
	}
	if order.OrderStatus == models.OrderCancelled {
		s.invalidateOrderLines(ctx, order)
	}

	recordAudit(ctx, s.auditService, s.logger, adminID, "ORDER_STATUS_UPDATE", "orders", id,
		map[string]interface{}{"from": string(previous), "to": string(order.OrderStatus), "trackingNumber": order.TrackingNumber})
	return order, nil
}

// invalidateProducts drops the cached by-url entries of products whose stock just changed.
func (s *orderService) invalidateProducts(ctx context.Context, products []*models.Product) {
	keys := make([]string, 0, len(products))
	for _, p := range products {
		if p.URL != "" {
			keys = append(keys, cacheKeyProductURLPrefix+p.URL)
		}
	}
	if len(keys) > 0 {
		s.cache.invalidate(ctx, keys...)
	}
}

// invalidateOrderLines resolves the products of a cancelled order, whose stock was
// restored, and drops their cache entries.
func (s *orderService) invalidateOrderLines(ctx context.Context, order *models.Order) {
	ids := make([]string, len(order.Items))
	for i, line := range order.Items {
		ids[i] = line.UniqueID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve cancelled order products for cache invalidation",
			zap.String("orderID", order.ID), zap.Error(err))
		return
	}
	s.invalidateProducts(ctx, products)
}
