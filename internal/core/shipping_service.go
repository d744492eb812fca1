package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/shipping"
)

// RateQuoter is the carrier client used by the shipping service.
type RateQuoter interface {
	Quote(ctx context.Context, req shipping.QuoteRequest) ([]shipping.Rate, error)
}

// shippingService implements the ShippingService interface.
type shippingService struct {
	quoter           RateQuoter
	addresses        AddressService
	cartRepo         db.CartRepository
	originPostalCode string
	logger           *zap.Logger
}

// NewShippingService creates a new ShippingService instance.
func NewShippingService(q RateQuoter, as AddressService, cr db.CartRepository, originPostalCode string, logger *zap.Logger) ShippingService {
	return &shippingService{
		quoter:           q,
		addresses:        as,
		cartRepo:         cr,
		originPostalCode: originPostalCode,
		logger:           logger,
	}
}

// Quote returns the best carrier rate for shipping the caller's cart to one of their addresses.
func (s *shippingService) Quote(ctx context.Context, userID, addressID string) (*shipping.Rate, error) {
	addr, err := s.addresses.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.List(ctx, userID, db.ListCart)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	count := 0
	for _, it := range items {
		count += it.Qty
	}

	rates, err := s.quoter.Quote(ctx, shipping.QuoteRequest{
		OriginPostalCode:      s.originPostalCode,
		DestinationPostalCode: addr.PostalCode,
		Parcel:                shipping.ParcelFor(count),
	})
	if err != nil {
		s.logger.Warn("carrier quote failed", zap.String("postalCode", addr.PostalCode), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
	}

	best, err := shipping.SelectBestRate(rates)
	if errors.Is(err, shipping.ErrNoRates) {
		return nil, fmt.Errorf("%w: destination %s", ErrNoShippingRates, addr.PostalCode)
	}
	return best, err
}
