package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/models"
)

// ShippingHandler quotes the cheapest carrier rate for the caller's cart.
type ShippingHandler struct {
	shippingService core.ShippingService
	logger          *zap.Logger
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(ss core.ShippingService, logger *zap.Logger) *ShippingHandler {
	return &ShippingHandler{shippingService: ss, logger: logger}
}

// Quote handles POST /shipping/quote
func (h *ShippingHandler) Quote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rate, err := h.shippingService.Quote(c.Request.Context(), userID, req.AddressID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
