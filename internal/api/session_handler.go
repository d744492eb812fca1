package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
	"storefront-backend-go/internal/middleware"
	"storefront-backend-go/internal/models"
)

// SessionIssuer verifies ID tokens and exchanges them for session cookies. *auth.Client implements it.
type SessionIssuer interface {
	middleware.TokenVerifier
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

// SessionHandler handles the cookie-based session endpoints.
type SessionHandler struct {
	issuer      SessionIssuer
	authMW      *middleware.AuthMiddleware
	userService core.UserService
	cookieName  string
	ttl         time.Duration
	secure      bool
	logger      *zap.Logger
}

// SessionHandlerConfig carries the cookie settings.
type SessionHandlerConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(issuer SessionIssuer, authMW *middleware.AuthMiddleware, us core.UserService, cfg SessionHandlerConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		issuer:      issuer,
		authMW:      authMW,
		userService: us,
		cookieName:  cfg.CookieName,
		ttl:         cfg.TTL,
		secure:      cfg.Secure,
		logger:      logger,
	}
}

// Login handles POST /session/login
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.SessionLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	token, err := h.issuer.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		h.logger.Info("login rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired ID token"})
		return
	}

	cookie, err := h.issuer.SessionCookie(ctx, req.IDToken, h.ttl)
	if err != nil {
		h.logger.Error("failed to create session cookie", zap.String("userID", token.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create session"})
		return
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if _, _, err := h.userService.GetOrCreate(ctx, token.UID, email, name); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, cookie, int(h.ttl.Seconds()), "/", "", h.secure, true)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session created"})
}

// Verify handles GET /session/verify
func (h *SessionHandler) Verify(c *gin.Context) {
	token, err := h.authMW.Authenticate(c)
	if err != nil {
		h.clearCookie(c)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	session, err := h.userService.Session(c.Request.Context(), token.UID, email, name)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout handles POST /session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	h.clearCookie(c)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session closed"})
}

func (h *SessionHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
}
