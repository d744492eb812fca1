package models

// CreateTaxonRequest is the body for creating a category, brand or type.
type CreateTaxonRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"categoryID,omitempty"`
}

// UpdateTaxonRequest uses pointers to tell "not provided" from "cleared".
type UpdateTaxonRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"categoryID,omitempty"`
}

// CreateSubcategoryRequest is the body for creating a subcategory.
type CreateSubcategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateSubcategoryRequest is the body for renaming a subcategory.
type UpdateSubcategoryRequest struct {
	Name *string `json:"name,omitempty"`
}

// CreateProductRequest is the body for creating a product.
type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price" binding:"gte=0"`
	StockQuantity int      `json:"stockQuantity" binding:"gte=0"`
	CategoryID    string   `json:"categoryID" binding:"required"`
	SubcategoryID string   `json:"subcategoryID,omitempty"`
	BrandID       string   `json:"brandID,omitempty"`
	TypeID        string   `json:"typeID,omitempty"`
	Images        []string `json:"images,omitempty" binding:"omitempty,dive,url"`
}

// UpdateProductRequest is the body for a partial product update.
type UpdateProductRequest struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Price         *float64  `json:"price,omitempty" binding:"omitempty,gte=0"`
	StockQuantity *int      `json:"stockQuantity,omitempty" binding:"omitempty,gte=0"`
	CategoryID    *string   `json:"categoryID,omitempty"`
	SubcategoryID *string   `json:"subcategoryID,omitempty"`
	BrandID       *string   `json:"brandID,omitempty"`
	TypeID        *string   `json:"typeID,omitempty"`
	Images        *[]string `json:"images,omitempty"`
}

// AddressRequest is the body for creating or replacing an address.
type AddressRequest struct {
	FullName       string `json:"fullName" binding:"required"`
	Phone          string `json:"phone" binding:"required,numeric,len=10"`
	Street         string `json:"street" binding:"required"`
	ExteriorNumber string `json:"exteriorNumber" binding:"required"`
	InteriorNumber string `json:"interiorNumber,omitempty"`
	Neighborhood   string `json:"neighborhood" binding:"required"`
	City           string `json:"city" binding:"required"`
	State          string `json:"state" binding:"required"`
	PostalCode     string `json:"postalCode" binding:"required,numeric,len=5"`
	References     string `json:"references,omitempty"`
	IsDefault      bool   `json:"isDefault"`
}

// AddToCartRequest is the body for adding a product to the cart or favorites.
type AddToCartRequest struct {
	UniqueID string `json:"uniqueID" binding:"required"`
	Qty      int    `json:"qty"`
}

// SetQuantityRequest replaces the quantity of a cart line.
type SetQuantityRequest struct {
	Qty int `json:"qty" binding:"required,gte=1"`
}

// MergeCartRequest carries the device-local cart or favorites list.
type MergeCartRequest struct {
	Items []LocalCartItem `json:"items" binding:"dive"`
}

// ResolveProductsRequest asks for summaries of the given product IDs.
type ResolveProductsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// CreateOrderRequest places an order from the caller's cart.
type CreateOrderRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

// UpdateOrderStatusRequest is the admin body for moving an order along.
type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status" binding:"required"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	Courier        string      `json:"courier,omitempty"`
}

// ShippingQuoteRequest asks for the best carrier rate to an address.
type ShippingQuoteRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

// SessionLoginRequest exchanges a Firebase ID token for a session cookie.
type SessionLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}
