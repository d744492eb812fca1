package api

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/mock"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
	"storefront-backend-go/internal/shipping"
)

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockIssuer) VerifySessionCookie(ctx context.Context, cookie string) (*auth.Token, error) {
	args := m.Called(ctx, cookie)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockIssuer) SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, idToken, expiresIn)
	return args.String(0), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetOrCreate(ctx context.Context, userID, email, displayName string) (*models.User, bool, error) {
	args := m.Called(ctx, userID, email, displayName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserService) Session(ctx context.Context, userID, email, displayName string) (*models.Session, error) {
	args := m.Called(ctx, userID, email, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockUserService) Require(ctx context.Context, userID, perm string) error {
	return m.Called(ctx, userID, perm).Error(0)
}

func (m *MockUserService) SeedRoles(ctx context.Context, roles []models.Role) (int, error) {
	args := m.Called(ctx, roles)
	return args.Int(0), args.Error(1)
}

type MockTaxonomyService struct {
	mock.Mock
}

func (m *MockTaxonomyService) CreateTaxon(ctx context.Context, userID string, kind models.TaxonKind, req models.CreateTaxonRequest) (*models.Taxon, error) {
	args := m.Called(ctx, userID, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) GetTaxon(ctx context.Context, kind models.TaxonKind, id string) (*models.Taxon, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) GetTaxonByURL(ctx context.Context, kind models.TaxonKind, url string) (*models.Taxon, error) {
	args := m.Called(ctx, kind, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) ListTaxa(ctx context.Context, kind models.TaxonKind, filter db.TaxonFilter) ([]*models.Taxon, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) UpdateTaxon(ctx context.Context, userID string, kind models.TaxonKind, id string, req models.UpdateTaxonRequest) (*models.Taxon, error) {
	args := m.Called(ctx, userID, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) PublicCategories(ctx context.Context) ([]*models.Taxon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) CreateSubcategory(ctx context.Context, userID, categoryID string, req models.CreateSubcategoryRequest) (*models.Subcategory, error) {
	args := m.Called(ctx, userID, categoryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subcategory), args.Error(1)
}

func (m *MockTaxonomyService) GetSubcategory(ctx context.Context, categoryID, id string) (*models.Subcategory, error) {
	args := m.Called(ctx, categoryID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subcategory), args.Error(1)
}

func (m *MockTaxonomyService) ListSubcategories(ctx context.Context, categoryID string) ([]*models.Subcategory, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subcategory), args.Error(1)
}

func (m *MockTaxonomyService) UpdateSubcategory(ctx context.Context, userID, categoryID, id string, req models.UpdateSubcategoryRequest) (*models.Subcategory, error) {
	args := m.Called(ctx, userID, categoryID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subcategory), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, userID string, req models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, userID, id string, req models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetProductByURL(ctx context.Context, url string) (*models.Product, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductService) ResolveProducts(ctx context.Context, ids []string) ([]models.ProductSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductSummary), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartView), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, userID, uniqueID string, qty int) (*models.CartItem, error) {
	args := m.Called(ctx, userID, uniqueID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartService) SetCartQuantity(ctx context.Context, userID, uniqueID string, qty int) (*models.CartItem, error) {
	args := m.Called(ctx, userID, uniqueID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID, uniqueID string) error {
	return m.Called(ctx, userID, uniqueID).Error(0)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartService) MergeLocalCart(ctx context.Context, userID string, items []models.LocalCartItem) (*models.MergeResult, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MergeResult), args.Error(1)
}

func (m *MockCartService) ListFavorites(ctx context.Context, userID string) ([]models.ProductSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductSummary), args.Error(1)
}

func (m *MockCartService) AddFavorite(ctx context.Context, userID, uniqueID string) error {
	return m.Called(ctx, userID, uniqueID).Error(0)
}

func (m *MockCartService) RemoveFavorite(ctx context.Context, userID, uniqueID string) error {
	return m.Called(ctx, userID, uniqueID).Error(0)
}

func (m *MockCartService) MergeLocalFavorites(ctx context.Context, userID string, items []models.LocalCartItem) (*models.MergeResult, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MergeResult), args.Error(1)
}

type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) CreateAddress(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressService) GetAddress(ctx context.Context, userID, id string) (*models.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressService) ListAddresses(ctx context.Context, userID string) ([]*models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Address), args.Error(1)
}

func (m *MockAddressService) UpdateAddress(ctx context.Context, userID, id string, req models.AddressRequest) (*models.Address, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressService) DeleteAddress(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockShippingService struct {
	mock.Mock
}

func (m *MockShippingService) Quote(ctx context.Context, userID, addressID string) (*shipping.Rate, error) {
	args := m.Called(ctx, userID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Rate), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID, email, addressID string) (*models.Order, error) {
	args := m.Called(ctx, userID, email, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListMyOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderService) GetMyOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter db.OrderFilter) ([]*models.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, adminID, id string, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	args := m.Called(ctx, adminID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
