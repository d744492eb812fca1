package models

import "time"

// Product is a catalog entry. Its document ID equals UniqueID.
type Product struct {
	ID            string    `json:"id" firestore:"-"`
	Name          string    `json:"name" firestore:"name"`
	Description   string    `json:"description,omitempty" firestore:"description,omitempty"`
	Price         float64   `json:"price" firestore:"price"`
	StockQuantity int       `json:"stockQuantity" firestore:"stockQuantity"`
	CategoryID    string    `json:"categoryID" firestore:"categoryID"`
	SubcategoryID string    `json:"subcategoryID,omitempty" firestore:"subcategoryID,omitempty"`
	BrandID       string    `json:"brandID,omitempty" firestore:"brandID,omitempty"`
	TypeID        string    `json:"typeID,omitempty" firestore:"typeID,omitempty"`
	Images        []string  `json:"images" firestore:"images"`
	AverageRating float64   `json:"averageRating" firestore:"averageRating"`
	NumReviews    int       `json:"numReviews" firestore:"numReviews"`
	URL           string    `json:"url" firestore:"url"`
	UniqueID      string    `json:"uniqueID" firestore:"uniqueID"`
	OwnerID       string    `json:"ownerId" firestore:"ownerId"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ProductSummary is the public projection used by cart, favorites and listing responses.
type ProductSummary struct {
	UniqueID      string  `json:"uniqueID"`
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	Image         string  `json:"image,omitempty"`
}

// Summary projects p to its public summary.
func (p *Product) Summary() ProductSummary {
	s := ProductSummary{
		UniqueID:      p.UniqueID,
		Name:          p.Name,
		URL:           p.URL,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}
	if len(p.Images) > 0 {
		s.Image = p.Images[0]
	}
	return s
}

// ProductFilter narrows the public catalog listing. Zero values mean "any".
type ProductFilter struct {
	CategoryID    string
	SubcategoryID string
	BrandID       string
	TypeID        string
	MinPrice      *float64
	MaxPrice      *float64
	Search        string
	Limit         int
	StartAfter    string
}
