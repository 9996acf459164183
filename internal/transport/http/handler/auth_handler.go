package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
	"github.com/bravo68web/scribe/pkg/logger"
)

// sessionCookieMaxAge matches the 24h session lifetime
const sessionCookieMaxAge = 24 * 60 * 60

// oauthStateCookie binds the consent redirect back to the browser that
// requested it; it only needs to outlive one trip to the provider
const (
	oauthStateCookie = "scribe-oauth-state"
	oauthStateMaxAge = 10 * 60
)

// AuthHandler handles the OAuth login flow
type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
	log          *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookies,
		log:          logger.Get().WithFields(logger.Component("auth-handler")),
	}
}

// OAuthURL handles GET /api/oauth/url
func (h *AuthHandler) OAuthURL(c *gin.Context) {
	state, err := service.GenerateState()
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, dto.OAuthURLResponse{
		URL: h.authService.AuthorizationURL(state),
	})
}

// OAuthCallback handles GET /api/oauth. The provider redirects here with
// the authorization code; a successful exchange sets the session cookie.
// The state parameter must match the one stashed when the consent URL
// was issued.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "missing authorization code",
		})
		return
	}

	state := c.Query("state")
	stored, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != stored {
		h.log.Warn("OAuth state mismatch", logger.ClientIP(c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "oauth state mismatch",
		})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)

	user, err := h.authService.HandleCallback(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, user.Token, sessionCookieMaxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	})
}

// Logout handles GET /api/logout by overwriting the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "logged out"})
}
