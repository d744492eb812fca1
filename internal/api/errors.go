package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/middleware"
)

// mapErrorToStatus maps errors from the core services to HTTP status codes and an ErrorResponse.
// Unexpected errors are logged and answered with a generic 500.
func mapErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidReference),
		errors.Is(err, core.ErrEmptyCart):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrPermissionDenied):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: "Permission denied"}
	case errors.Is(err, core.ErrNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Resource not found", Details: err.Error()}
	case errors.Is(err, core.ErrInsufficientStock),
		errors.Is(err, core.ErrInvalidStatusTransition),
		errors.Is(err, core.ErrSlugExhausted):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Conflict", Details: err.Error()}
	case errors.Is(err, core.ErrNoShippingRates),
		errors.Is(err, core.ErrCarrierUnavailable):
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: "Shipping carrier error", Details: err.Error()}
	default:
		logger.Error("Internal Server Error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	_ = c.Error(err)
	c.JSON(statusCode, errResponse)
}

// currentUserID returns the authenticated caller, writing a 401 when there is none.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return "", false
	}
	return userID, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
}
