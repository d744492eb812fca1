package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/models"
)

// CartHandler handles the cart and favorites of the authenticated user.
type CartHandler struct {
	cartService core.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cs core.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cs, logger: logger}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart handles POST /cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.cartService.AddToCart(c.Request.Context(), userID, req.UniqueID, req.Qty)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// SetQuantity handles PUT /cart/:uniqueID
func (h *CartHandler) SetQuantity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.cartService.SetCartQuantity(c.Request.Context(), userID, c.Param("uniqueID"), req.Qty)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveFromCart handles DELETE /cart/:uniqueID
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.cartService.RemoveFromCart(c.Request.Context(), userID, c.Param("uniqueID")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MergeCart handles POST /cart/merge
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.cartService.MergeLocalCart(c.Request.Context(), userID, req.Items)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListFavorites handles GET /favorites
func (h *CartHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	favorites, err := h.cartService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

// AddFavorite handles POST /favorites
func (h *CartHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.cartService.AddFavorite(c.Request.Context(), userID, req.UniqueID); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Product added to favorites"})
}

// RemoveFavorite handles DELETE /favorites/:uniqueID
func (h *CartHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.cartService.RemoveFavorite(c.Request.Context(), userID, c.Param("uniqueID")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MergeFavorites handles POST /favorites/merge
func (h *CartHandler) MergeFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.cartService.MergeLocalFavorites(c.Request.Context(), userID, req.Items)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
