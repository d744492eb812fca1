package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend-go/internal/models"
)

// firestoreTaxonRepository implements TaxonRepository. Each kind is its own top-level collection.
type firestoreTaxonRepository struct {
	client *firestore.Client
}

// NewFirestoreTaxonRepository creates a new TaxonRepository backed by Firestore.
func NewFirestoreTaxonRepository(client *firestore.Client) TaxonRepository {
	return &firestoreTaxonRepository{client: client}
}

func decodeTaxon(kind models.TaxonKind) func(*firestore.DocumentSnapshot) (*models.Taxon, error) {
	return func(doc *firestore.DocumentSnapshot) (*models.Taxon, error) {
		var t models.Taxon
		if err := doc.DataTo(&t); err != nil {
			return nil, err
		}
		t.ID = doc.Ref.ID
		t.Kind = kind
		return &t, nil
	}
}

func (r *firestoreTaxonRepository) Create(ctx context.Context, kind models.TaxonKind, taxon *models.Taxon) (string, error) {
	docRef := r.client.Collection(string(kind)).NewDoc()
	taxon.ID = docRef.ID
	taxon.Kind = kind
	if _, err := docRef.Create(ctx, taxon); err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", kind, err)
	}
	return docRef.ID, nil
}

func (r *firestoreTaxonRepository) GetByID(ctx context.Context, kind models.TaxonKind, id string) (*models.Taxon, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(string(kind)).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s '%s' not found: %w", kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s '%s': %w", kind, id, err)
	}
	return decodeTaxon(kind)(docSnap)
}

func (r *firestoreTaxonRepository) GetByURL(ctx context.Context, kind models.TaxonKind, url string) (*models.Taxon, error) {
	iter := r.client.Collection(string(kind)).Where("url", "==", url).Limit(1).Documents(ctx)
	found, err := collect(iter, decodeTaxon(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by url '%s': %w", kind, url, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%s with url '%s' not found: %w", kind, url, ErrNotFound)
	}
	return found[0], nil
}

func (r *firestoreTaxonRepository) List(ctx context.Context, kind models.TaxonKind, filter TaxonFilter) ([]*models.Taxon, error) {
	coll := r.client.Collection(string(kind))
	q := coll.Query
	if filter.CategoryID != "" {
		q = q.Where("categoryID", "==", filter.CategoryID)
	}
	q, err := paginate(ctx, coll, q.OrderBy("name", firestore.Asc), filter.Limit, filter.StartAfter)
	if err != nil {
		return nil, err
	}

	items, err := collect(q.Documents(ctx), decodeTaxon(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return items, nil
}

func (r *firestoreTaxonRepository) Update(ctx context.Context, kind models.TaxonKind, taxon *models.Taxon) error {
	if taxon.ID == "" {
		return errors.New("id cannot be empty for Update operation")
	}
	if _, err := r.client.Collection(string(kind)).Doc(taxon.ID).Set(ctx, taxon); err != nil {
		return fmt.Errorf("failed to update %s '%s': %w", kind, taxon.ID, err)
	}
	return nil
}

// firestoreSubcategoryRepository implements SubcategoryRepository on categories/{id}/subcategories.
type firestoreSubcategoryRepository struct {
	client *firestore.Client
}

// NewFirestoreSubcategoryRepository creates a new SubcategoryRepository backed by Firestore.
func NewFirestoreSubcategoryRepository(client *firestore.Client) SubcategoryRepository {
	return &firestoreSubcategoryRepository{client: client}
}

func (r *firestoreSubcategoryRepository) coll(categoryID string) *firestore.CollectionRef {
	return r.client.Collection(string(models.KindCategory)).Doc(categoryID).Collection("subcategories")
}

func decodeSubcategory(doc *firestore.DocumentSnapshot) (*models.Subcategory, error) {
	var s models.Subcategory
	if err := doc.DataTo(&s); err != nil {
		return nil, err
	}
	s.ID = doc.Ref.ID
	return &s, nil
}

func (r *firestoreSubcategoryRepository) Create(ctx context.Context, categoryID string, sub *models.Subcategory) (string, error) {
	docRef := r.coll(categoryID).NewDoc()
	sub.ID = docRef.ID
	sub.CategoryID = categoryID
	if _, err := docRef.Create(ctx, sub); err != nil {
		return "", fmt.Errorf("failed to create subcategory in category '%s': %w", categoryID, err)
	}
	return docRef.ID, nil
}

func (r *firestoreSubcategoryRepository) GetByID(ctx context.Context, categoryID, id string) (*models.Subcategory, error) {
	docSnap, err := r.coll(categoryID).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("subcategory '%s' in category '%s' not found: %w", id, categoryID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subcategory '%s': %w", id, err)
	}
	return decodeSubcategory(docSnap)
}

func (r *firestoreSubcategoryRepository) List(ctx context.Context, categoryID string) ([]*models.Subcategory, error) {
	subs, err := collect(r.coll(categoryID).OrderBy("name", firestore.Asc).Documents(ctx), decodeSubcategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories of '%s': %w", categoryID, err)
	}
	return subs, nil
}

func (r *firestoreSubcategoryRepository) Update(ctx context.Context, categoryID string, sub *models.Subcategory) error {
	if _, err := r.coll(categoryID).Doc(sub.ID).Set(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subcategory '%s': %w", sub.ID, err)
	}
	return nil
}
