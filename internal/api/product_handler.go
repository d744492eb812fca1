package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/models"
)

// ProductHandler handles catalog administration and the public storefront listing.
type ProductHandler struct {
	productService core.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps core.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: ps, logger: logger}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), userID, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductByURL handles GET /products/url/:url and GET /store/products/:url
func (h *ProductHandler) GetProductByURL(c *gin.Context) {
	product, err := h.productService.GetProductByURL(c.Request.Context(), c.Param("url"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListStoreProducts handles GET /store/products
func (h *ProductHandler) ListStoreProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}
	products, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}

	resp := ListResponse{Items: products}
	pageSize := filter.Limit
	if pageSize <= 0 || pageSize > core.MaxProductPageSize {
		pageSize = core.MaxProductPageSize
	}
	if len(products) == pageSize {
		resp.NextStartAfter = products[len(products)-1].ID
	}
	c.JSON(http.StatusOK, resp)
}

// ResolveProducts handles POST /store/products/resolve
func (h *ProductHandler) ResolveProducts(c *gin.Context) {
	var req models.ResolveProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	summaries, err := h.productService.ResolveProducts(c.Request.Context(), req.IDs)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func parseProductFilter(c *gin.Context) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		CategoryID:    c.Query("category"),
		SubcategoryID: c.Query("subcategory"),
		BrandID:       c.Query("brand"),
		TypeID:        c.Query("type"),
		Search:        strings.TrimSpace(c.Query("q")),
		StartAfter:    c.Query("startAfter"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errInvalidParam("limit")
		}
		filter.Limit = limit
	}
	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return filter, errInvalidParam("minPrice")
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return filter, errInvalidParam("maxPrice")
		}
		filter.MaxPrice = &v
	}
	return filter, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return "invalid value for " + string(e) }
