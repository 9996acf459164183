package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/domain/models"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

// fakeProvider simulates the OAuth token endpoint and the user identity
// endpoint. The identity it reports can be switched between logins.
type fakeProvider struct {
	srv      *httptest.Server
	login    string
	avatar   string
	tokenHit int
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{login: "alice", avatar: "https://avatars.example.com/alice"}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenHit++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "provider-access-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"login":      p.login,
			"avatar_url": p.avatar,
		})
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func newAuthService(t *testing.T, env *testEnv, provider *fakeProvider, adminUsername string) *AuthService {
	t.Helper()

	cfg := &config.OAuthConfig{
		ClientID:    "client-id",
		Secret:      "client-secret",
		AuthURL:     provider.srv.URL + "/authorize",
		TokenURL:    provider.srv.URL + "/token",
		UserAPIURL:  provider.srv.URL + "/user",
		RedirectURL: "http://localhost:8080/api/oauth",
	}
	return NewAuthService(cfg, &config.AdminConfig{Username: adminUsername}, env.users, env.groups)
}

func TestAuthorizationURL(t *testing.T) {
	env := newTestEnv(t)
	provider := newFakeProvider(t)
	svc := newAuthService(t, env, provider, "")

	url := svc.AuthorizationURL("some-state")
	assert.Contains(t, url, provider.srv.URL+"/authorize")
	assert.Contains(t, url, "state=some-state")
	assert.Contains(t, url, "client_id=client-id")
}

func TestHandleCallbackFirstUserBecomesAdmin(t *testing.T) {
	env := newTestEnv(t)
	provider := newFakeProvider(t)
	svc := newAuthService(t, env, provider, "")
	perms := NewPermissionService(env.groups)

	user, err := svc.HandleCallback(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.Token)
	assert.Equal(t, provider.avatar, user.AvatarURL)

	admin, err := perms.IsAdmin(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, admin, "the first user ever is enrolled as admin")

	// The second distinct user is not
	provider.login = "bob"
	bob, err := svc.HandleCallback(context.Background(), "auth-code")
	require.NoError(t, err)

	admin, err = perms.IsAdmin(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestHandleCallbackConfiguredAdmin(t *testing.T) {
	env := newTestEnv(t)
	provider := newFakeProvider(t)
	svc := newAuthService(t, env, provider, "boss")
	perms := NewPermissionService(env.groups)

	// Someone else takes the first-user slot
	provider.login = "carol"
	_, err := svc.HandleCallback(context.Background(), "auth-code")
	require.NoError(t, err)

	provider.login = "boss"
	boss, err := svc.HandleCallback(context.Background(), "auth-code")
	require.NoError(t, err)

	admin, err := perms.IsAdmin(context.Background(), boss.ID)
	require.NoError(t, err)
	assert.True(t, admin)
}

func TestHandleCallbackRotatesSessionToken(t *testing.T) {
	env := newTestEnv(t)
	provider := newFakeProvider(t)
	svc := newAuthService(t, env, provider, "")

	first, err := svc.HandleCallback(context.Background(), "auth-code")
	require.NoError(t, err)
	oldToken := first.Token

	second, err := svc.HandleCallback(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "logging in again must not create a second user")
	assert.NotEqual(t, oldToken, second.Token)

	// Only the fresh token resolves
	user, err := svc.ResolveSession(context.Background(), second.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.ResolveSession(context.Background(), oldToken)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestResolveSession(t *testing.T) {
	env := newTestEnv(t)
	provider := newFakeProvider(t)
	svc := newAuthService(t, env, provider, "")

	_, err := svc.ResolveSession(context.Background(), "")
	assert.True(t, apperror.IsUnauthorized(err))

	_, err = svc.ResolveSession(context.Background(), "unknown-token")
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestResolveSessionExpired(t *testing.T) {
	env := newTestEnv(t)
	provider := newFakeProvider(t)
	svc := newAuthService(t, env, provider, "")

	expired := &models.User{
		Username:       "stale",
		Token:          "stale-token",
		ExpirationDate: time.Now().Add(-time.Minute),
	}
	require.NoError(t, env.users.Create(context.Background(), expired))

	_, err := svc.ResolveSession(context.Background(), "stale-token")
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestGenerateStateIsUnique(t *testing.T) {
	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 32)
}
