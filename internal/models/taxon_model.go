package models

import "time"

// TaxonKind names a top-level taxonomy collection.
type TaxonKind string

const (
	KindCategory TaxonKind = "categories"
	KindBrand    TaxonKind = "brands"
	KindType     TaxonKind = "types"
)

// Valid reports whether k is one of the known taxonomy kinds.
func (k TaxonKind) Valid() bool {
	switch k {
	case KindCategory, KindBrand, KindType:
		return true
	}
	return false
}

// Taxon is a category, brand or type. Brands and types hang off a category
// through CategoryID; categories leave it empty.
type Taxon struct {
	ID          string    `json:"id" firestore:"-"`
	Kind        TaxonKind `json:"kind" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	URL         string    `json:"url" firestore:"url"`
	UniqueID    string    `json:"uniqueID" firestore:"uniqueID"`
	CategoryID  string    `json:"categoryID,omitempty" firestore:"categoryID,omitempty"`
	OwnerID     string    `json:"ownerId" firestore:"ownerId"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// Subcategory lives in the subcategories sub-collection of its category.
type Subcategory struct {
	ID         string    `json:"id" firestore:"-"`
	Name       string    `json:"name" firestore:"name"`
	URL        string    `json:"url" firestore:"url"`
	CategoryID string    `json:"categoryID" firestore:"categoryID"`
	UniqueID   string    `json:"uniqueID" firestore:"uniqueID"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
