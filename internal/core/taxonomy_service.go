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

// taxonomyService implements the TaxonomyService interface.
type taxonomyService struct {
	taxonRepo    db.TaxonRepository
	subRepo      db.SubcategoryRepository
	slugs        db.SlugRegistry
	auditService AuditService
	cache        *jsonCache
	logger       *zap.Logger
}

// NewTaxonomyService creates a new TaxonomyService instance. backend may be nil.
func NewTaxonomyService(
	tr db.TaxonRepository,
	sr db.SubcategoryRepository,
	slugs db.SlugRegistry,
	as AuditService,
	backend cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) TaxonomyService {
	return &taxonomyService{
		taxonRepo:    tr,
		subRepo:      sr,
		slugs:        slugs,
		auditService: as,
		cache:        newJSONCache(backend, cacheTTL, logger),
		logger:       logger,
	}
}

func subcategoryScope(categoryID string) string {
	return "subcategories/" + categoryID
}

func auditAction(kind models.TaxonKind, verb string) string {
	name := strings.TrimSuffix(string(kind), "s")
	if kind == models.KindCategory {
		name = "category"
	}
	return strings.ToUpper(name) + "_" + verb
}

// requireCategory returns ErrInvalidReference unless categoryID names an existing category.
func (s *taxonomyService) requireCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return fmt.Errorf("%w: categoryID is required", ErrInvalidInput)
	}
	if _, err := s.taxonRepo.GetByID(ctx, models.KindCategory, categoryID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: category '%s'", ErrInvalidReference, categoryID)
		}
		return fmt.Errorf("failed to check category '%s': %w", categoryID, err)
	}
	return nil
}

func (s *taxonomyService) CreateTaxon(ctx context.Context, userID string, kind models.TaxonKind, req models.CreateTaxonRequest) (*models.Taxon, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown taxonomy kind '%s'", ErrInvalidInput, kind)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	categoryID := ""
	if kind != models.KindCategory {
		if err := s.requireCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		categoryID = req.CategoryID
	}

	slug, err := AllocateSlug(ctx, s.slugs, string(kind), name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	taxon := &models.Taxon{
		Kind:        kind,
		Name:        name,
		Description: req.Description,
		URL:         slug,
		UniqueID:    uuid.NewString(),
		CategoryID:  categoryID,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.taxonRepo.Create(ctx, kind, taxon); err != nil {
		_ = s.slugs.Release(ctx, string(kind), slug)
		return nil, fmt.Errorf("failed to create %s in repository: %w", kind, err)
	}

	if kind == models.KindCategory {
		s.cache.invalidate(ctx, cacheKeyPublicCategories)
	}
	recordAudit(ctx, s.auditService, s.logger, userID, auditAction(kind, "CREATE"), string(kind), taxon.ID,
		map[string]interface{}{"name": taxon.Name, "url": taxon.URL})
	return taxon, nil
}

func (s *taxonomyService) GetTaxon(ctx context.Context, kind models.TaxonKind, id string) (*models.Taxon, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown taxonomy kind '%s'", ErrInvalidInput, kind)
	}
	taxon, err := s.taxonRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("%s '%s'", kind, id))
	}
	return taxon, nil
}

func (s *taxonomyService) GetTaxonByURL(ctx context.Context, kind models.TaxonKind, url string) (*models.Taxon, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown taxonomy kind '%s'", ErrInvalidInput, kind)
	}
	taxon, err := s.taxonRepo.GetByURL(ctx, kind, url)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("%s with url '%s'", kind, url))
	}
	return taxon, nil
}

func (s *taxonomyService) ListTaxa(ctx context.Context, kind models.TaxonKind, filter db.TaxonFilter) ([]*models.Taxon, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown taxonomy kind '%s'", ErrInvalidInput, kind)
	}
	if kind == models.KindCategory {
		filter.CategoryID = ""
	}
	taxa, err := s.taxonRepo.List(ctx, kind, filter)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("failed to list %s", kind))
	}
	return taxa, nil
}

func (s *taxonomyService) UpdateTaxon(ctx context.Context, userID string, kind models.TaxonKind, id string, req models.UpdateTaxonRequest) (_ *models.Taxon, err error) {
	taxon, err := s.GetTaxon(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	var rename *slugRename
	defer func() { rename.settle(ctx, err) }()

	changes := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		if name != taxon.Name {
			rename, err = renameSlug(ctx, s.slugs, string(kind), taxon.Name, taxon.URL, name)
			if err != nil {
				return nil, err
			}
			taxon.Name = name
			taxon.URL = rename.Slug()
			changes["name"] = name
			changes["url"] = taxon.URL
		}
	}
	if req.Description != nil {
		taxon.Description = *req.Description
		changes["description"] = *req.Description
	}
	if req.CategoryID != nil && kind != models.KindCategory && *req.CategoryID != taxon.CategoryID {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		taxon.CategoryID = *req.CategoryID
		changes["categoryID"] = *req.CategoryID
	}

	if len(changes) == 0 {
		return taxon, nil
	}
	taxon.UpdatedAt = time.Now().UTC()
	if err := s.taxonRepo.Update(ctx, kind, taxon); err != nil {
		return nil, fmt.Errorf("failed to update %s '%s': %w", kind, id, err)
	}

	if kind == models.KindCategory {
		s.cache.invalidate(ctx, cacheKeyPublicCategories)
	}
	recordAudit(ctx, s.auditService, s.logger, userID, auditAction(kind, "UPDATE"), string(kind), id, changes)
	return taxon, nil
}

func (s *taxonomyService) PublicCategories(ctx context.Context) ([]*models.Taxon, error) {
	var cached []*models.Taxon
	if s.cache.get(ctx, cacheKeyPublicCategories, &cached) {
		return cached, nil
	}
	categories, err := s.taxonRepo.List(ctx, models.KindCategory, db.TaxonFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	s.cache.set(ctx, cacheKeyPublicCategories, categories)
	return categories, nil
}

func (s *taxonomyService) CreateSubcategory(ctx context.Context, userID, categoryID string, req models.CreateSubcategoryRequest) (*models.Subcategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.taxonRepo.GetByID(ctx, models.KindCategory, categoryID); err != nil {
		return nil, repoErr(err, fmt.Sprintf("category '%s'", categoryID))
	}

	scope := subcategoryScope(categoryID)
	slug, err := AllocateSlug(ctx, s.slugs, scope, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &models.Subcategory{
		Name:       name,
		URL:        slug,
		CategoryID: categoryID,
		UniqueID:   uuid.NewString(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.subRepo.Create(ctx, categoryID, sub); err != nil {
		_ = s.slugs.Release(ctx, scope, slug)
		return nil, fmt.Errorf("failed to create subcategory in repository: %w", err)
	}

	recordAudit(ctx, s.auditService, s.logger, userID, "SUBCATEGORY_CREATE", "subcategories", sub.ID,
		map[string]interface{}{"name": sub.Name, "url": sub.URL, "categoryID": categoryID})
	return sub, nil
}

func (s *taxonomyService) GetSubcategory(ctx context.Context, categoryID, id string) (*models.Subcategory, error) {
	sub, err := s.subRepo.GetByID(ctx, categoryID, id)
	if err != nil {
		return nil, repoErr(err, fmt.Sprintf("subcategory '%s'", id))
	}
	return sub, nil
}

func (s *taxonomyService) ListSubcategories(ctx context.Context, categoryID string) ([]*models.Subcategory, error) {
	if _, err := s.taxonRepo.GetByID(ctx, models.KindCategory, categoryID); err != nil {
		return nil, repoErr(err, fmt.Sprintf("category '%s'", categoryID))
	}
	subs, err := s.subRepo.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	return subs, nil
}

func (s *taxonomyService) UpdateSubcategory(ctx context.Context, userID, categoryID, id string, req models.UpdateSubcategoryRequest) (_ *models.Subcategory, err error) {
	sub, err := s.GetSubcategory(ctx, categoryID, id)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return sub, nil
	}
	name := strings.TrimSpace(*req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if name == sub.Name {
		return sub, nil
	}

	rename, err := renameSlug(ctx, s.slugs, subcategoryScope(categoryID), sub.Name, sub.URL, name)
	if err != nil {
		return nil, err
	}
	defer func() { rename.settle(ctx, err) }()
	slug := rename.Slug()
	sub.Name = name
	sub.URL = slug
	sub.UpdatedAt = time.Now().UTC()
	if err := s.subRepo.Update(ctx, categoryID, sub); err != nil {
		return nil, fmt.Errorf("failed to update subcategory '%s': %w", id, err)
	}

	recordAudit(ctx, s.auditService, s.logger, userID, "SUBCATEGORY_UPDATE", "subcategories", id,
		map[string]interface{}{"name": name, "url": slug})
	return sub, nil
}
