package core

import (
	"context"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
	"storefront-backend-go/internal/shipping"
)

// UserService resolves callers to profiles, roles and permissions.
type UserService interface {
	// GetOrCreate retrieves a user by ID, creating it with the default role when missing.
	GetOrCreate(ctx context.Context, userID, email, displayName string) (*models.User, bool, error)
	// Session returns the caller's profile and the permissions of their role.
	Session(ctx context.Context, userID, email, displayName string) (*models.Session, error)
	// Require returns ErrPermissionDenied unless the user's role grants perm.
	Require(ctx context.Context, userID, perm string) error
	// SeedRoles creates the given roles when they do not exist yet.
	SeedRoles(ctx context.Context, roles []models.Role) (int, error)
}

// TaxonomyService manages categories, subcategories, brands and types.
type TaxonomyService interface {
	CreateTaxon(ctx context.Context, userID string, kind models.TaxonKind, req models.CreateTaxonRequest) (*models.Taxon, error)
	GetTaxon(ctx context.Context, kind models.TaxonKind, id string) (*models.Taxon, error)
	GetTaxonByURL(ctx context.Context, kind models.TaxonKind, url string) (*models.Taxon, error)
	ListTaxa(ctx context.Context, kind models.TaxonKind, filter db.TaxonFilter) ([]*models.Taxon, error)
	UpdateTaxon(ctx context.Context, userID string, kind models.TaxonKind, id string, req models.UpdateTaxonRequest) (*models.Taxon, error)
	// PublicCategories lists every category for storefront navigation, served from cache when possible.
	PublicCategories(ctx context.Context) ([]*models.Taxon, error)

	CreateSubcategory(ctx context.Context, userID, categoryID string, req models.CreateSubcategoryRequest) (*models.Subcategory, error)
	GetSubcategory(ctx context.Context, categoryID, id string) (*models.Subcategory, error)
	ListSubcategories(ctx context.Context, categoryID string) ([]*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, userID, categoryID, id string, req models.UpdateSubcategoryRequest) (*models.Subcategory, error)
}

// ProductService manages the catalog.
type ProductService interface {
	CreateProduct(ctx context.Context, userID string, req models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, userID, id string, req models.UpdateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductByURL(ctx context.Context, url string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	// ResolveProducts maps IDs to summaries in input order, skipping unknown IDs.
	ResolveProducts(ctx context.Context, ids []string) ([]models.ProductSummary, error)
}

// CartService manages the per-user cart and favorites.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartView, error)
	AddToCart(ctx context.Context, userID, uniqueID string, qty int) (*models.CartItem, error)
	SetCartQuantity(ctx context.Context, userID, uniqueID string, qty int) (*models.CartItem, error)
	RemoveFromCart(ctx context.Context, userID, uniqueID string) error
	ClearCart(ctx context.Context, userID string) error
	MergeLocalCart(ctx context.Context, userID string, items []models.LocalCartItem) (*models.MergeResult, error)

	ListFavorites(ctx context.Context, userID string) ([]models.ProductSummary, error)
	AddFavorite(ctx context.Context, userID, uniqueID string) error
	RemoveFavorite(ctx context.Context, userID, uniqueID string) error
	MergeLocalFavorites(ctx context.Context, userID string, items []models.LocalCartItem) (*models.MergeResult, error)
}

// AddressService manages the address book. Addresses of other users behave as not found.
type AddressService interface {
	CreateAddress(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error)
	GetAddress(ctx context.Context, userID, id string) (*models.Address, error)
	ListAddresses(ctx context.Context, userID string) ([]*models.Address, error)
	UpdateAddress(ctx context.Context, userID, id string, req models.AddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, id string) error
}

// ShippingService quotes carrier rates.
type ShippingService interface {
	Quote(ctx context.Context, userID, addressID string) (*shipping.Rate, error)
}

// OrderService handles checkout and order administration.
type OrderService interface {
	CreateOrder(ctx context.Context, userID, email, addressID string) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID string) ([]*models.Order, error)
	GetMyOrder(ctx context.Context, userID, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter db.OrderFilter) ([]*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, adminID, id string, req models.UpdateOrderStatusRequest) (*models.Order, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// EventPublisher emits domain events to the message queue.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
}
