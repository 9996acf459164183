package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/application/service"
	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/infrastructure/database"
	repoimpl "github.com/bravo68web/scribe/internal/infrastructure/repository"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

// newAuthRouter wires an AuthHandler over a migrated in-memory database
// and a stubbed OAuth provider
func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "provider-access-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"login":      "alice",
			"avatar_url": "https://avatars.example.com/alice",
		})
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	db, err := database.NewDatabaseInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	authService := service.NewAuthService(
		&config.OAuthConfig{
			ClientID:    "client-id",
			Secret:      "client-secret",
			AuthURL:     provider.URL + "/authorize",
			TokenURL:    provider.URL + "/token",
			UserAPIURL:  provider.URL + "/user",
			RedirectURL: "http://localhost:8080/api/oauth",
		},
		&config.AdminConfig{},
		repoimpl.NewUserRepository(db.DB()),
		repoimpl.NewGroupRepository(db.DB()),
	)

	h := NewAuthHandler(authService, false)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/oauth/url", h.OAuthURL)
	router.GET("/api/oauth", h.OAuthCallback)
	router.GET("/api/logout", h.Logout)
	return router
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestOAuthStateRoundTrip(t *testing.T) {
	router := newAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth/url", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	consent, err := url.Parse(resp.URL)
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)

	// The state in the consent URL is the one stashed in the cookie
	stateCookie := responseCookie(w, oauthStateCookie)
	require.NotNil(t, stateCookie)
	assert.Equal(t, state, stateCookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/oauth?code=auth-code&state="+url.QueryEscape(state), nil)
	req.AddCookie(stateCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	session := responseCookie(w, middleware.SessionCookieName)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Value)

	var user struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
}

func TestOAuthCallbackRejectsStateMismatch(t *testing.T) {
	router := newAuthRouter(t)

	// No stashed state at all
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth?code=auth-code&state=forged", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Stashed state differs from the one on the redirect
	req := httptest.NewRequest(http.MethodGet, "/api/oauth?code=auth-code&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "expected"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Redirect carries no state parameter
	req = httptest.NewRequest(http.MethodGet, "/api/oauth?code=auth-code", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "expected"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// No session was established on any of those
	assert.Nil(t, responseCookie(w, middleware.SessionCookieName))
}
