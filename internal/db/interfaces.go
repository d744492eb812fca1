package db

import (
	"context"

	"storefront-backend-go/internal/models"
)

// CartList selects one of the per-user product lists.
type CartList string

const (
	ListCart      CartList = "cart"
	ListFavorites CartList = "favorites"
)

// TaxonFilter narrows taxonomy listings.
type TaxonFilter struct {
	CategoryID string
	Limit      int
	StartAfter string
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status     models.OrderStatus
	Limit      int
	StartAfter string
}

// TaxonRepository stores categories, brands and types, one collection per kind.
type TaxonRepository interface {
	Create(ctx context.Context, kind models.TaxonKind, taxon *models.Taxon) (string, error)
	GetByID(ctx context.Context, kind models.TaxonKind, id string) (*models.Taxon, error)
	GetByURL(ctx context.Context, kind models.TaxonKind, url string) (*models.Taxon, error)
	List(ctx context.Context, kind models.TaxonKind, filter TaxonFilter) ([]*models.Taxon, error)
	Update(ctx context.Context, kind models.TaxonKind, taxon *models.Taxon) error
}

// SubcategoryRepository stores the subcategories sub-collection of a category.
type SubcategoryRepository interface {
	Create(ctx context.Context, categoryID string, sub *models.Subcategory) (string, error)
	GetByID(ctx context.Context, categoryID, id string) (*models.Subcategory, error)
	List(ctx context.Context, categoryID string) ([]*models.Subcategory, error)
	Update(ctx context.Context, categoryID string, sub *models.Subcategory) error
}

// SlugRegistry reserves slugs within a scope. Claim fails with ErrAlreadyExists
// when the slug is held.
type SlugRegistry interface {
	Claim(ctx context.Context, scope, slug string) error
	Release(ctx context.Context, scope, slug string) error
}

// ProductRepository stores catalog products keyed by uniqueID.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByURL(ctx context.Context, url string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	// Update sets the named top-level fields of product id and leaves the rest untouched.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// CartRepository stores the per-user cart and favorites sub-collections.
type CartRepository interface {
	Get(ctx context.Context, userID string, list CartList, uniqueID string) (*models.CartItem, error)
	List(ctx context.Context, userID string, list CartList) ([]*models.CartItem, error)
	Put(ctx context.Context, userID string, list CartList, item *models.CartItem) error
	Delete(ctx context.Context, userID string, list CartList, uniqueID string) error
	Clear(ctx context.Context, userID string, list CartList) error
}

// AddressRepository stores address book entries.
type AddressRepository interface {
	Create(ctx context.Context, addr *models.Address) (string, error)
	GetByID(ctx context.Context, id string) (*models.Address, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Address, error)
	Update(ctx context.Context, addr *models.Address) error
	Delete(ctx context.Context, id string) error
	// SetDefault marks id as the owner's only default address.
	SetDefault(ctx context.Context, ownerID, id string) error
}

// OrderRepository stores orders. Place and Transition keep stock consistent with the order.
type OrderRepository interface {
	// Place decrements stock for every line and creates the order atomically.
	Place(ctx context.Context, order *models.Order) (string, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*models.Order, error)
	// Transition loads the order, applies mutate and saves it in one transaction,
	// restoring stock when the order becomes cancelled.
	Transition(ctx context.Context, id string, mutate func(*models.Order) error) (*models.Order, error)
}

// UserRepository stores application user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// RoleRepository stores roles.
type RoleRepository interface {
	GetByID(ctx context.Context, roleID string) (*models.Role, error)
	// CreateIfMissing stores role unless a role with the same ID exists. It reports whether it wrote.
	CreateIfMissing(ctx context.Context, role *models.Role) (bool, error)
}

// AuditRepository stores audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
