package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/pkg/logger"
)

// SessionCookieName is the HTTP-only cookie carrying the session token
const SessionCookieName = "scribe-session"

// UserContextKey is the gin context key for the authenticated user
const UserContextKey = "user"

// AuthMiddleware resolves the session cookie into a user and enforces
// permissions on protected routes
type AuthMiddleware struct {
	authService *service.AuthService
	permissions *service.PermissionService
	log         *logger.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(authService *service.AuthService, permissions *service.PermissionService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		permissions: permissions,
		log:         logger.Get().WithFields(logger.Component("auth-middleware")),
	}
}

// resolveUser reads the session cookie and resolves it to a user.
// Missing cookie, unknown token and expired token all come back nil.
func (m *AuthMiddleware) resolveUser(c *gin.Context) *models.User {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil
	}

	user, err := m.authService.ResolveSession(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

// RequireAuth requires a valid session for the endpoint
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.resolveUser(c)
		if user == nil {
			m.log.Warn("Authentication required but not provided",
				logger.Path(c.Request.URL.Path),
				logger.Method(c.Request.Method),
				logger.ClientIP(c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequirePermission requires a valid session holding the given permission.
// Admin group membership always passes.
func (m *AuthMiddleware) RequirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.resolveUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		if err := m.permissions.Require(c.Request.Context(), user.ID, perm); err != nil {
			m.log.Warn("Permission denied",
				logger.Username(user.Username),
				logger.String("permission", perm.String()),
				logger.Path(c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "missing permission " + perm.String(),
			})
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c *gin.Context) *models.User {
	if user, exists := c.Get(UserContextKey); exists {
		if u, ok := user.(*models.User); ok {
			return u
		}
	}
	return nil
}
