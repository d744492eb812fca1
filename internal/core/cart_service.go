package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

// cartService implements the CartService interface.
type cartService struct {
	cartRepo    db.CartRepository
	productRepo db.ProductRepository
	pricing     PricingRules
	logger      *zap.Logger
}

// NewCartService creates a new CartService instance.
func NewCartService(cr db.CartRepository, pr db.ProductRepository, pricing PricingRules, logger *zap.Logger) CartService {
	return &cartService{
		cartRepo:    cr,
		productRepo: pr,
		pricing:     pricing,
		logger:      logger,
	}
}

func (s *cartService) product(ctx context.Context, uniqueID string) (*models.Product, error) {
	if uniqueID == "" {
		return nil, fmt.Errorf("%w: uniqueID is required", ErrInvalidInput)
	}
	p, err := s.productRepo.GetByID(ctx, uniqueID)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("product '%s'", uniqueID))
	}
	return p, nil
}

// existing returns the current line for uniqueID, or nil when the list does not hold it.
func (s *cartService) existing(ctx context.Context, userID string, list db.CartList, uniqueID string) (*models.CartItem, error) {
	item, err := s.cartRepo.Get(ctx, userID, list, uniqueID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s line '%s': %w", list, uniqueID, err)
	}
	return item, nil
}

func checkStock(p *models.Product, qty int) error {
	if qty > p.StockQuantity {
		return fmt.Errorf("%w: '%s' has %d available, %d requested", ErrInsufficientStock, p.UniqueID, p.StockQuantity, qty)
	}
	return nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	items, err := s.cartRepo.List(ctx, userID, db.ListCart)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.UniqueID
	}
	byID, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{Lines: make([]models.CartLine, 0, len(items))}
	priced := make([]PricedLine, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.UniqueID]
		if !ok {
			s.logger.Debug("dropping cart line of a vanished product", zap.String("userID", userID), zap.String("uniqueID", it.UniqueID))
			continue
		}
		view.Lines = append(view.Lines, models.CartLine{
			Product:   p.Summary(),
			Qty:       it.Qty,
			LineTotal: LineTotal(p.Price, it.Qty),
		})
		priced = append(priced, PricedLine{Price: p.Price, Qty: it.Qty})
	}
	view.Totals = s.pricing.ComputeTotals(priced)
	return view, nil
}

func (s *cartService) resolve(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	byID := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	products, err := s.productRepo.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	for _, p := range products {
		byID[p.UniqueID] = p
	}
	return byID, nil
}

// AddToCart adds qty units (1 when zero) of a product, summing with any existing line.
func (s *cartService) AddToCart(ctx context.Context, userID, uniqueID string, qty int) (*models.CartItem, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: qty must be at least 1", ErrInvalidInput)
	}
	p, err := s.product(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	line, err := s.existing(ctx, userID, db.ListCart, uniqueID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		line = &models.CartItem{UniqueID: uniqueID, AddedAt: time.Now().UTC()}
	}
	if err := checkStock(p, line.Qty+qty); err != nil {
		return nil, err
	}
	line.Qty += qty
	if err := s.cartRepo.Put(ctx, userID, db.ListCart, line); err != nil {
		return nil, fmt.Errorf("failed to save cart line: %w", err)
	}
	return line, nil
}

func (s *cartService) SetCartQuantity(ctx context.Context, userID, uniqueID string, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: qty must be at least 1", ErrInvalidInput)
	}
	line, err := s.existing(ctx, userID, db.ListCart, uniqueID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, fmt.Errorf("%w: cart line '%s'", ErrNotFound, uniqueID)
	}
	p, err := s.product(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(p, qty); err != nil {
		return nil, err
	}
	line.Qty = qty
	if err := s.cartRepo.Put(ctx, userID, db.ListCart, line); err != nil {
		return nil, fmt.Errorf("failed to save cart line: %w", err)
	}
	return line, nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, uniqueID string) error {
	if err := s.cartRepo.Delete(ctx, userID, db.ListCart, uniqueID); err != nil {
		return repoErr(err, fmt.Sprintf("cart line '%s'", uniqueID))
	}
	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.cartRepo.Clear(ctx, userID, db.ListCart); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MergeLocalCart replays a device-local cart as successive adds. Entries that fail are
// reported in the result instead of aborting the merge.
func (s *cartService) MergeLocalCart(ctx context.Context, userID string, items []models.LocalCartItem) (*models.MergeResult, error) {
	result := &models.MergeResult{Merged: []string{}, Failed: map[string]string{}}
	for _, it := range sumLocal(items) {
		if _, err := s.AddToCart(ctx, userID, it.UniqueID, it.Qty); err != nil {
			if !isClientError(err) {
				return nil, err
			}
			result.Failed[it.UniqueID] = err.Error()
			continue
		}
		result.Merged = append(result.Merged, it.UniqueID)
	}
	return result, nil
}

func (s *cartService) ListFavorites(ctx context.Context, userID string) ([]models.ProductSummary, error) {
	items, err := s.cartRepo.List(ctx, userID, db.ListFavorites)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.UniqueID
	}
	byID, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProductSummary, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p.Summary())
		}
	}
	return out, nil
}

// AddFavorite is idempotent.
func (s *cartService) AddFavorite(ctx context.Context, userID, uniqueID string) error {
	if _, err := s.product(ctx, uniqueID); err != nil {
		return err
	}
	line, err := s.existing(ctx, userID, db.ListFavorites, uniqueID)
	if err != nil {
		return err
	}
	if line != nil {
		return nil
	}
	item := &models.CartItem{UniqueID: uniqueID, Qty: 1, AddedAt: time.Now().UTC()}
	if err := s.cartRepo.Put(ctx, userID, db.ListFavorites, item); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

func (s *cartService) RemoveFavorite(ctx context.Context, userID, uniqueID string) error {
	if err := s.cartRepo.Delete(ctx, userID, db.ListFavorites, uniqueID); err != nil {
		return repoErr(err, fmt.Sprintf("favorite '%s'", uniqueID))
	}
	return nil
}

func (s *cartService) MergeLocalFavorites(ctx context.Context, userID string, items []models.LocalCartItem) (*models.MergeResult, error) {
	result := &models.MergeResult{Merged: []string{}, Failed: map[string]string{}}
	for _, it := range sumLocal(items) {
		if err := s.AddFavorite(ctx, userID, it.UniqueID); err != nil {
			if !isClientError(err) {
				return nil, err
			}
			result.Failed[it.UniqueID] = err.Error()
			continue
		}
		result.Merged = append(result.Merged, it.UniqueID)
	}
	return result, nil
}

// sumLocal folds repeated uniqueIDs into one entry, in first-seen order. Missing quantities count as 1.
func sumLocal(items []models.LocalCartItem) []models.LocalCartItem {
	index := make(map[string]int, len(items))
	out := make([]models.LocalCartItem, 0, len(items))
	for _, it := range items {
		qty := it.Qty
		if qty == 0 {
			qty = 1
		}
		if i, ok := index[it.UniqueID]; ok {
			out[i].Qty += qty
			continue
		}
		index[it.UniqueID] = len(out)
		out = append(out, models.LocalCartItem{UniqueID: it.UniqueID, Qty: qty})
	}
	return out
}

// isClientError reports whether err is caused by the request rather than by infrastructure.
func isClientError(err error) bool {
	for _, target := range []error{ErrInvalidInput, ErrNotFound, ErrInsufficientStock, ErrInvalidReference} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
