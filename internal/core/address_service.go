package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

// addressService implements the AddressService interface.
type addressService struct {
	addressRepo db.AddressRepository
	logger      *zap.Logger
}

// NewAddressService creates a new AddressService instance.
func NewAddressService(ar db.AddressRepository, logger *zap.Logger) AddressService {
	return &addressService{addressRepo: ar, logger: logger}
}

func applyAddress(addr *models.Address, req models.AddressRequest) {
	addr.FullName = req.FullName
	addr.Phone = req.Phone
	addr.Street = req.Street
	addr.ExteriorNumber = req.ExteriorNumber
	addr.InteriorNumber = req.InteriorNumber
	addr.Neighborhood = req.Neighborhood
	addr.City = req.City
	addr.State = req.State
	addr.PostalCode = req.PostalCode
	addr.References = req.References
}

// CreateAddress stores a new address. The first address of a user, or one created with
// isDefault, becomes the default.
func (s *addressService) CreateAddress(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error) {
	existing, err := s.addressRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	now := time.Now().UTC()
	addr := &models.Address{OwnerID: userID, CreatedAt: now, UpdatedAt: now}
	applyAddress(addr, req)
	makeDefault := req.IsDefault || len(existing) == 0
	addr.IsDefault = makeDefault && len(existing) == 0

	id, err := s.addressRepo.Create(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create address in repository: %w", err)
	}
	addr.ID = id

	if makeDefault && len(existing) > 0 {
		if err := s.addressRepo.SetDefault(ctx, userID, id); err != nil {
			return nil, fmt.Errorf("failed to make address '%s' the default: %w", id, err)
		}
		addr.IsDefault = true
	}
	return addr, nil
}

// GetAddress returns ErrNotFound for addresses owned by someone else.
func (s *addressService) GetAddress(ctx context.Context, userID, id string) (*models.Address, error) {
	addr, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("address '%s'", id))
	}
	if addr.OwnerID != userID {
		return nil, fmt.Errorf("%w: address '%s'", ErrNotFound, id)
	}
	return addr, nil
}

func (s *addressService) ListAddresses(ctx context.Context, userID string) ([]*models.Address, error) {
	addrs, err := s.addressRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addrs, nil
}

// UpdateAddress replaces the address fields. Asking for isDefault moves the default here;
// the default cannot be unset directly, another address has to take it.
func (s *addressService) UpdateAddress(ctx context.Context, userID, id string, req models.AddressRequest) (*models.Address, error) {
	addr, err := s.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyAddress(addr, req)
	addr.UpdatedAt = time.Now().UTC()
	if err := s.addressRepo.Update(ctx, addr); err != nil {
		return nil, fmt.Errorf("failed to update address '%s': %w", id, err)
	}
	if req.IsDefault && !addr.IsDefault {
		if err := s.addressRepo.SetDefault(ctx, userID, id); err != nil {
			return nil, fmt.Errorf("failed to make address '%s' the default: %w", id, err)
		}
		addr.IsDefault = true
	}
	return addr, nil
}

// DeleteAddress removes an address. Removing the default promotes the oldest remaining one.
func (s *addressService) DeleteAddress(ctx context.Context, userID, id string) error {
	addr, err := s.GetAddress(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.addressRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete address '%s': %w", id, err)
	}
	if !addr.IsDefault {
		return nil
	}

	remaining, err := s.addressRepo.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Warn("could not promote a new default address", zap.String("userID", userID), zap.Error(err))
		return nil
	}
	if len(remaining) > 0 {
		if err := s.addressRepo.SetDefault(ctx, userID, remaining[0].ID); err != nil {
			s.logger.Warn("could not promote a new default address", zap.String("userID", userID), zap.Error(err))
		}
	}
	return nil
}
