package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend-go/internal/core"
)

// Gin context keys set by AuthMiddleware.
const (
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
)

// ErrorResponse mirrors api.ErrorResponse; it is duplicated here to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens and session cookies. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
}

// PermissionChecker is the part of core.UserService used by RequirePermission.
type PermissionChecker interface {
	Require(ctx context.Context, userID, perm string) error
}

// AuthMiddleware provides Gin middleware for Firebase authentication.
type AuthMiddleware struct {
	verifier   TokenVerifier
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
// It panics if verifier is nil, as no authenticated route can work without it.
func NewAuthMiddleware(verifier TokenVerifier, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier, cookieName: cookieName, logger: logger}
}

// VerifyToken authenticates the request with a Bearer ID token or, when the
// Authorization header is absent, the session cookie. On success it stores the
// caller's UID, e-mail and display name in the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.Authenticate(c)
		if err != nil {
			m.logger.Debug("authentication failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}

		c.Set(ContextUserID, token.UID)
		if email, ok := token.Claims["email"].(string); ok {
			c.Set(ContextUserEmail, email)
		}
		if name, ok := token.Claims["name"].(string); ok {
			c.Set(ContextUserDisplayName, name)
		}
		c.Next()
	}
}

var (
	errMissingCredentials = errors.New("Authorization header or session cookie is required")
	errMalformedHeader    = errors.New("Authorization header format must be 'Bearer {token}'")
	errInvalidToken       = errors.New("Invalid or expired authentication token")
)

// Authenticate verifies the Bearer ID token or, without an Authorization header, the session cookie.
func (m *AuthMiddleware) Authenticate(c *gin.Context) (*auth.Token, error) {
	ctx := c.Request.Context()

	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return nil, errMalformedHeader
		}
		token, err := m.verifier.VerifyIDToken(ctx, parts[1])
		if err != nil {
			m.logger.Info("rejected ID token", zap.Error(err))
			return nil, errInvalidToken
		}
		return token, nil
	}

	cookie, err := c.Cookie(m.cookieName)
	if err != nil || cookie == "" {
		return nil, errMissingCredentials
	}
	token, err := m.verifier.VerifySessionCookie(ctx, cookie)
	if err != nil {
		m.logger.Info("rejected session cookie", zap.Error(err))
		return nil, errInvalidToken
	}
	return token, nil
}

// RequirePermission aborts with 403 unless the authenticated caller's role grants perm.
// It must run after VerifyToken.
func RequirePermission(checker PermissionChecker, perm string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
			return
		}
		if err := checker.Require(c.Request.Context(), userID, perm); err != nil {
			if errors.Is(err, core.ErrPermissionDenied) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Permission denied", Details: perm})
				return
			}
			logger.Error("permission check failed", zap.String("userID", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to check permissions"})
			return
		}
		c.Next()
	}
}
