package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// sessionLifetime is how long a login stays valid
const sessionLifetime = 24 * time.Hour

// AuthService handles the OAuth login flow and session resolution
type AuthService struct {
	oauth         *oauth2.Config
	client        *resty.Client
	userAPIURL    string
	adminUsername string
	userRepo      repository.UserRepository
	groupRepo     repository.GroupRepository
	log           *logger.Logger
}

// providerIdentity is the subset of the provider's user endpoint this
// service reads. GitHub uses login, generic OIDC providers often use
// username; whichever is present wins.
type providerIdentity struct {
	Login     string `json:"login"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	cfg *config.OAuthConfig,
	adminCfg *config.AdminConfig,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
) *AuthService {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.Secret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}

	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond)

	return &AuthService{
		oauth:         oauthCfg,
		client:        client,
		userAPIURL:    cfg.UserAPIURL,
		adminUsername: adminCfg.Username,
		userRepo:      userRepo,
		groupRepo:     groupRepo,
		log:           logger.Get().WithFields(logger.Component("auth")),
	}
}

// AuthorizationURL returns the provider consent URL to redirect the
// browser to
func (s *AuthService) AuthorizationURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, fetches the identity
// behind it and establishes a session. Logging in again replaces any
// previous session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Unauthorized("authorization code exchange failed", err)
	}

	identity, err := s.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	username := identity.Login
	if username == "" {
		username = identity.Username
	}
	if username == "" {
		return nil, apperror.UpstreamError("fetch identity",
			fmt.Errorf("provider returned no username"))
	}

	sessionToken, err := generateSessionToken()
	if err != nil {
		return nil, apperror.InternalError("failed to generate session token", err)
	}
	expiry := time.Now().Add(sessionLifetime)

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		user.Token = sessionToken
		user.ExpirationDate = expiry
		user.AvatarURL = identity.AvatarURL
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	case apperror.IsNotFound(err):
		isFirst, countErr := s.isFirstUser(ctx)
		if countErr != nil {
			return nil, countErr
		}
		user = &models.User{
			Username:       username,
			Token:          sessionToken,
			ExpirationDate: expiry,
			AvatarURL:      identity.AvatarURL,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		if username == s.adminUsername || isFirst {
			if err := s.enrollAdmin(ctx, user); err != nil {
				return nil, err
			}
		}
		s.log.Info("Enrolled new user", logger.Username(username))
	default:
		return nil, err
	}

	return user, nil
}

// ResolveSession returns the user behind a session token. An expired
// token is treated exactly like an unknown one.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.Unauthorized("", apperror.ErrUnauthorized)
	}

	user, err := s.userRepo.FindByToken(ctx, token)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Unauthorized("", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if user.SessionExpired(time.Now()) {
		return nil, apperror.Unauthorized("session expired", apperror.ErrSessionExpired)
	}
	return user, nil
}

func (s *AuthService) fetchIdentity(ctx context.Context, accessToken string) (*providerIdentity, error) {
	var identity providerIdentity
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json").
		SetResult(&identity).
		Get(s.userAPIURL)
	if err != nil {
		return nil, apperror.UpstreamError("fetch identity", err)
	}
	if resp.StatusCode() != 200 {
		return nil, apperror.UpstreamError("fetch identity",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return &identity, nil
}

func (s *AuthService) isFirstUser(ctx context.Context) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// enrollAdmin puts the user into the seeded Admin group
func (s *AuthService) enrollAdmin(ctx context.Context, user *models.User) error {
	group, err := s.groupRepo.FindByName(ctx, models.AdminGroupName)
	if err != nil {
		return err
	}
	if err := s.groupRepo.AddMember(ctx, group.ID, user.ID); err != nil {
		return err
	}
	s.log.Info("Enrolled user into Admin group", logger.Username(user.Username))
	return nil
}

// generateSessionToken returns an opaque high-entropy token
func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateState returns a random value to bind an OAuth round trip
func GenerateState() (string, error) {
	return generateSessionToken()
}
