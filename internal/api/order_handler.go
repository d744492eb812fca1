package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/db"
	"storefront-backend-go/internal/middleware"
	"storefront-backend-go/internal/models"
)

// OrderHandler handles checkout, the customer's order history and order administration.
type OrderHandler struct {
	orderService core.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(ors core.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: ors, logger: logger}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, c.GetString(middleware.ContextUserEmail), req.AddressID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders handles GET /orders
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListMyOrders(c.Request.Context(), userID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetMyOrder handles GET /orders/:id
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetMyOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := db.OrderFilter{
		Status:     models.OrderStatus(c.Query("status")),
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
	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), adminID, c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
