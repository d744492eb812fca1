package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/models"
)

// AddressHandler handles the address book of the authenticated user.
type AddressHandler struct {
	addressService core.AddressService
	logger         *zap.Logger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(as core.AddressService, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{addressService: as, logger: logger}
}

// ListAddresses handles GET /addresses
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	addresses, err := h.addressService.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// CreateAddress handles POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	address, err := h.addressService.CreateAddress(c.Request.Context(), userID, req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// UpdateAddress handles PUT /addresses/:id
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	address, err := h.addressService.UpdateAddress(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// DeleteAddress handles DELETE /addresses/:id
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.addressService.DeleteAddress(c.Request.Context(), userID, c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
