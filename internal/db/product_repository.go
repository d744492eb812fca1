package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend-go/internal/models"
)

const productsCollection = "products"

// searchScanLimit bounds how many documents a text search reads before filtering in memory.
const searchScanLimit = 500

type firestoreProductRepository struct {
	client *firestore.Client
}

// NewFirestoreProductRepository creates a new ProductRepository backed by Firestore.
func NewFirestoreProductRepository(client *firestore.Client) ProductRepository {
	return &firestoreProductRepository{client: client}
}

func decodeProduct(doc *firestore.DocumentSnapshot) (*models.Product, error) {
	var p models.Product
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	p.ID = doc.Ref.ID
	return &p, nil
}

// Create stores product under its UniqueID.
func (r *firestoreProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.UniqueID == "" {
		return errors.New("product uniqueID cannot be empty for Create operation")
	}
	product.ID = product.UniqueID
	_, err := r.client.Collection(productsCollection).Doc(product.UniqueID).Create(ctx, product)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("product '%s': %w", product.UniqueID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(productsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("product '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product '%s': %w", id, err)
	}
	return decodeProduct(docSnap)
}

func (r *firestoreProductRepository) GetByURL(ctx context.Context, url string) (*models.Product, error) {
	iter := r.client.Collection(productsCollection).Where("url", "==", url).Limit(1).Documents(ctx)
	found, err := collect(iter, decodeProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to query product by url '%s': %w", url, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("product with url '%s' not found: %w", url, ErrNotFound)
	}
	return found[0], nil
}

// GetByIDs resolves uniqueIDs with "in" queries of at most firestoreInLimit values each.
// Unknown IDs are skipped.
func (r *firestoreProductRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	products := make([]*models.Product, 0, len(ids))
	for _, part := range chunk(ids, firestoreInLimit) {
		iter := r.client.Collection(productsCollection).Where("uniqueID", "in", part).Documents(ctx)
		found, err := collect(iter, decodeProduct)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve products %v: %w", part, err)
		}
		products = append(products, found...)
	}
	return products, nil
}

func (r *firestoreProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	coll := r.client.Collection(productsCollection)
	q := coll.Query
	for _, eq := range [][2]string{
		{"categoryID", filter.CategoryID},
		{"subcategoryID", filter.SubcategoryID},
		{"brandID", filter.BrandID},
		{"typeID", filter.TypeID},
	} {
		if eq[1] != "" {
			q = q.Where(eq[0], "==", eq[1])
		}
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		if filter.MinPrice != nil {
			q = q.Where("price", ">=", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			q = q.Where("price", "<=", *filter.MaxPrice)
		}
		q = q.OrderBy("price", firestore.Asc)
	} else {
		q = q.OrderBy("createdAt", firestore.Desc)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		q, err := paginate(ctx, coll, q, filter.Limit, filter.StartAfter)
		if err != nil {
			return nil, err
		}
		products, err := collect(q.Documents(ctx), decodeProduct)
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		return products, nil
	}

	// Firestore has no text search; scan a bounded page and match names in memory.
	q, err := paginate(ctx, coll, q, searchScanLimit, filter.StartAfter)
	if err != nil {
		return nil, err
	}
	scanned, err := collect(q.Documents(ctx), decodeProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	products := make([]*models.Product, 0)
	for _, p := range scanned {
		if strings.Contains(strings.ToLower(p.Name), search) {
			products = append(products, p)
			if filter.Limit > 0 && len(products) == filter.Limit {
				break
			}
		}
	}
	return products, nil
}

// Update writes only the given top-level fields, so concurrent stock movements on
// the same document are not overwritten.
func (r *firestoreProductRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if id == "" {
		return errors.New("product ID cannot be empty for Update operation")
	}
	if len(fields) == 0 {
		return nil
	}
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}
	if _, err := r.client.Collection(productsCollection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("product '%s' not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to update product '%s': %w", id, err)
	}
	return nil
}
