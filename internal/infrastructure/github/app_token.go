package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bravo68web/scribe/internal/config"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

const (
	// appJWTBackdate absorbs clock skew between this host and GitHub
	appJWTBackdate = 60 * time.Second
	// appJWTLifetime is the maximum GitHub accepts for an app JWT
	appJWTLifetime = 10 * time.Minute
	// refreshMargin renews the installation token before it actually expires
	refreshMargin = 60 * time.Second
)

// AppTokens mints app JWTs and exchanges them for installation access
// tokens. Tokens are cached until close to expiry; all methods are safe
// for concurrent use.
type AppTokens struct {
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	client         *resty.Client
	log            *logger.Logger

	mu          sync.Mutex
	cachedToken string
	expiresAt   time.Time
}

// installationTokenResponse is the relevant part of GitHub's access token
// exchange response
type installationTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAppTokens loads the app's RSA private key and prepares the token
// exchanger. A missing or malformed key is a startup failure.
func NewAppTokens(cfg *config.GitHubConfig) (*AppTokens, error) {
	appID, err := strconv.ParseInt(cfg.AppID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid github app id %q: %w", cfg.AppID, err)
	}
	installationID, err := strconv.ParseInt(cfg.InstallationID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid github installation id %q: %w", cfg.InstallationID, err)
	}

	pem, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read app private key: %w", err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("failed to parse app private key: %w", err)
	}

	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/vnd.github+json")

	return &AppTokens{
		appID:          appID,
		installationID: installationID,
		key:            key,
		client:         client,
		log:            logger.Get().WithFields(logger.Component("github_app")),
	}, nil
}

// signAppJWT mints a short-lived RS256 JWT identifying the app itself.
// The issued-at claim is backdated to tolerate clock skew.
func (a *AppTokens) signAppJWT(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    fmt.Sprintf("%d", a.appID),
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app jwt: %w", err)
	}
	return signed, nil
}

// InstallationToken returns a valid installation access token, exchanging
// a fresh app JWT for one when the cached token is absent or near expiry
func (a *AppTokens) InstallationToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	if a.cachedToken != "" && now.Before(a.expiresAt.Add(-refreshMargin)) {
		return a.cachedToken, nil
	}

	appJWT, err := a.signAppJWT(now)
	if err != nil {
		return "", err
	}

	var tokenResp installationTokenResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(appJWT).
		SetResult(&tokenResp).
		Post(fmt.Sprintf("/app/installations/%d/access_tokens", a.installationID))
	if err != nil {
		return "", apperror.UpstreamError("installation token exchange", err)
	}
	if resp.StatusCode() != 201 {
		return "", apperror.UpstreamError("installation token exchange",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	if tokenResp.Token == "" {
		return "", apperror.UpstreamError("installation token exchange",
			fmt.Errorf("empty token in response"))
	}

	a.cachedToken = tokenResp.Token
	a.expiresAt = tokenResp.ExpiresAt

	a.log.Debug("Exchanged app JWT for installation token",
		logger.Time("expires_at", a.expiresAt),
	)

	return a.cachedToken, nil
}

// Invalidate drops the cached token so the next call exchanges a new one
func (a *AppTokens) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cachedToken = ""
	a.expiresAt = time.Time{}
}
