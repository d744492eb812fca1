package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/models"
)

// TaxonomyHandler serves one taxonomy kind. Categories additionally expose their subcategories.
type TaxonomyHandler struct {
	kind    models.TaxonKind
	service core.TaxonomyService
	logger  *zap.Logger
}

// NewTaxonomyHandler creates a handler bound to kind.
func NewTaxonomyHandler(kind models.TaxonKind, ts core.TaxonomyService, logger *zap.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{kind: kind, service: ts, logger: logger}
}

// Create handles POST /{kind}
func (h *TaxonomyHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateTaxonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	taxon, err := h.service.CreateTaxon(c.Request.Context(), userID, h.kind, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, taxon)
}

// List handles GET /{kind}
func (h *TaxonomyHandler) List(c *gin.Context) {
	filter := db.TaxonFilter{
		CategoryID: c.Query("categoryID"),
		StartAfter: c.Query("startAfter"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
			return
		}
		filter.Limit = limit
	}
	taxa, err := h.service.ListTaxa(c.Request.Context(), h.kind, filter)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, taxa)
}

// Get handles GET /{kind}/:id
func (h *TaxonomyHandler) Get(c *gin.Context) {
	taxon, err := h.service.GetTaxon(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, taxon)
}

// GetByURL handles GET /{kind}/url/:url
func (h *TaxonomyHandler) GetByURL(c *gin.Context) {
	taxon, err := h.service.GetTaxonByURL(c.Request.Context(), h.kind, c.Param("url"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, taxon)
}

// Update handles PUT /{kind}/:id
func (h *TaxonomyHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateTaxonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	taxon, err := h.service.UpdateTaxon(c.Request.Context(), userID, h.kind, c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, taxon)
}

// CreateSubcategory handles POST /categories/:id/subcategories
func (h *TaxonomyHandler) CreateSubcategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.service.CreateSubcategory(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// ListSubcategories handles GET /categories/:id/subcategories
func (h *TaxonomyHandler) ListSubcategories(c *gin.Context) {
	subs, err := h.service.ListSubcategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GetSubcategory handles GET /categories/:id/subcategories/:subId
func (h *TaxonomyHandler) GetSubcategory(c *gin.Context) {
	sub, err := h.service.GetSubcategory(c.Request.Context(), c.Param("id"), c.Param("subId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpdateSubcategory handles PUT /categories/:id/subcategories/:subId
func (h *TaxonomyHandler) UpdateSubcategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.service.UpdateSubcategory(c.Request.Context(), userID, c.Param("id"), c.Param("subId"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// PublicCategories handles GET /store/categories
func (h *TaxonomyHandler) PublicCategories(c *gin.Context) {
	categories, err := h.service.PublicCategories(c.Request.Context())
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
