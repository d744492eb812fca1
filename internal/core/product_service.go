package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
	"storefront-backend-go/pkg/cache"
)

const productSlugScope = "products"

// MaxProductPageSize caps one page of the catalog listing.
const MaxProductPageSize = 100

// productService implements the ProductService interface.
type productService struct {
	productRepo  db.ProductRepository
	taxonRepo    db.TaxonRepository
	subRepo      db.SubcategoryRepository
	slugs        db.SlugRegistry
	auditService AuditService
	cache        *jsonCache
	logger       *zap.Logger
}

// NewProductService creates a new ProductService instance. backend may be nil.
func NewProductService(
	pr db.ProductRepository,
	tr db.TaxonRepository,
	sr db.SubcategoryRepository,
	slugs db.SlugRegistry,
	as AuditService,
	backend cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  pr,
		taxonRepo:    tr,
		subRepo:      sr,
		slugs:        slugs,
		auditService: as,
		cache:        newJSONCache(backend, cacheTTL, logger),
		logger:       logger,
	}
}

// productRefs are the taxonomy references a product carries.
type productRefs struct {
	categoryID, subcategoryID, brandID, typeID string
}

// validateRefs checks that every non-empty reference exists. The category is mandatory.
func (s *productService) validateRefs(ctx context.Context, refs productRefs) error {
	if refs.categoryID == "" {
		return fmt.Errorf("%w: categoryID is required", ErrInvalidInput)
	}
	check := func(kind models.TaxonKind, id string) error {
		if id == "" {
			return nil
		}
		if _, err := s.taxonRepo.GetByID(ctx, kind, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: %s '%s'", ErrInvalidReference, kind, id)
			}
			return fmt.Errorf("failed to check %s '%s': %w", kind, id, err)
		}
		return nil
	}
	if err := check(models.KindCategory, refs.categoryID); err != nil {
		return err
	}
	if err := check(models.KindBrand, refs.brandID); err != nil {
		return err
	}
	if err := check(models.KindType, refs.typeID); err != nil {
		return err
	}
	if refs.subcategoryID != "" {
		if _, err := s.subRepo.GetByID(ctx, refs.categoryID, refs.subcategoryID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: subcategory '%s' of category '%s'", ErrInvalidReference, refs.subcategoryID, refs.categoryID)
			}
			return fmt.Errorf("failed to check subcategory '%s': %w", refs.subcategoryID, err)
		}
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, userID string, req models.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price < 0 || req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: price and stockQuantity must not be negative", ErrInvalidInput)
	}
	if err := s.validateRefs(ctx, productRefs{req.CategoryID, req.SubcategoryID, req.BrandID, req.TypeID}); err != nil {
		return nil, err
	}

	slug, err := AllocateSlug(ctx, s.slugs, productSlugScope, name)
	if err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	now := time.Now().UTC()
	product := &models.Product{
		Name:          name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		BrandID:       req.BrandID,
		TypeID:        req.TypeID,
		Images:        images,
		URL:           slug,
		UniqueID:      uuid.NewString(),
		OwnerID:       userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		_ = s.slugs.Release(ctx, productSlugScope, slug)
		return nil, fmt.Errorf("failed to create product in repository: %w", err)
	}

	recordAudit(ctx, s.auditService, s.logger, userID, "PRODUCT_CREATE", "products", product.ID,
		map[string]interface{}{"name": product.Name, "url": product.URL, "price": product.Price})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, userID, id string, req models.UpdateProductRequest) (_ *models.Product, err error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	oldURL := product.URL

	var rename *slugRename
	defer func() { rename.settle(ctx, err) }()

	// fields holds the document paths to write; changes is the audit summary.
	fields := map[string]interface{}{}
	changes := map[string]interface{}{}
	if req.Description != nil {
		product.Description = *req.Description
		fields["description"] = *req.Description
		changes["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		product.Price = *req.Price
		fields["price"] = *req.Price
		changes["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stockQuantity must not be negative", ErrInvalidInput)
		}
		product.StockQuantity = *req.StockQuantity
		fields["stockQuantity"] = *req.StockQuantity
		changes["stockQuantity"] = *req.StockQuantity
	}
	if req.Images != nil {
		product.Images = *req.Images
		fields["images"] = *req.Images
		changes["images"] = len(*req.Images)
	}

	refsChanged := false
	setRef := func(field string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			fields[field] = *src
			changes[field] = *src
			refsChanged = true
		}
	}
	setRef("categoryID", &product.CategoryID, req.CategoryID)
	setRef("subcategoryID", &product.SubcategoryID, req.SubcategoryID)
	setRef("brandID", &product.BrandID, req.BrandID)
	setRef("typeID", &product.TypeID, req.TypeID)
	if refsChanged {
		if err := s.validateRefs(ctx, productRefs{product.CategoryID, product.SubcategoryID, product.BrandID, product.TypeID}); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		if name != product.Name {
			rename, err = renameSlug(ctx, s.slugs, productSlugScope, product.Name, product.URL, name)
			if err != nil {
				return nil, err
			}
			product.Name = name
			product.URL = rename.Slug()
			fields["name"] = name
			fields["url"] = product.URL
			changes["name"] = name
			changes["url"] = product.URL
		}
	}

	if len(changes) == 0 {
		return product, nil
	}
	product.UpdatedAt = time.Now().UTC()
	fields["updatedAt"] = product.UpdatedAt
	if err := s.productRepo.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update product '%s': %w", id, err)
	}

	s.cache.invalidate(ctx, cacheKeyProductURLPrefix+oldURL, cacheKeyProductURLPrefix+product.URL)
	recordAudit(ctx, s.auditService, s.logger, userID, "PRODUCT_UPDATE", "products", id, changes)
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("product '%s'", id))
	}
	return product, nil
}

func (s *productService) GetProductByURL(ctx context.Context, url string) (*models.Product, error) {
	key := cacheKeyProductURLPrefix + url
	var cached models.Product
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}
	product, err := s.productRepo.GetByURL(ctx, url)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("product with url '%s'", url))
	}
	s.cache.set(ctx, key, product)
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice is greater than maxPrice", ErrInvalidInput)
	}
	if filter.Limit <= 0 || filter.Limit > MaxProductPageSize {
		filter.Limit = MaxProductPageSize
	}
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, repoErr(err, "failed to list products")
	}
	return products, nil
}

func (s *productService) ResolveProducts(ctx context.Context, ids []string) ([]models.ProductSummary, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return []models.ProductSummary{}, nil
	}
	products, err := s.productRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.UniqueID] = p
	}
	out := make([]models.ProductSummary, 0, len(products))
	for _, id := range unique {
		if p, ok := byID[id]; ok {
			out = append(out, p.Summary())
		}
	}
	return out, nil
}

// dedupe drops empty and repeated IDs, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
