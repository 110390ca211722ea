package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/repository"
	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// GitHubOAuthService handles GitHub login and links GitHub identities to users
type GitHubOAuthService struct {
	config    *config.GitHubConfig
	oauth2Cfg *oauth2.Config
	identity  service.IdentityProvider
	userRepo  repository.UserRepository
	auth      service.AuthService
	log       *logger.Logger
}

// NewGitHubOAuthService creates a new GitHubOAuthService instance
func NewGitHubOAuthService(
	cfg *config.GitHubConfig,
	identity service.IdentityProvider,
	userRepo repository.UserRepository,
	auth service.AuthService,
) *GitHubOAuthService {
	return &GitHubOAuthService{
		config: cfg,
		oauth2Cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     github.Endpoint,
			Scopes:       cfg.Scopes,
		},
		identity: identity,
		userRepo: userRepo,
		auth:     auth,
		log:      logger.Get().WithFields(logger.Component("github-oauth")),
	}
}

// IsEnabled returns whether GitHub login is configured
func (s *GitHubOAuthService) IsEnabled() bool {
	return s.config.OAuthConfigured()
}

// GenerateAuthURL returns the GitHub authorize URL and the state to remember for the callback
func (s *GitHubOAuthService) GenerateAuthURL() (string, string, error) {
	if !s.IsEnabled() {
		return "", "", apperrors.NewAppError(apperrors.CodeServiceUnavailable, "GitHub login is not configured", nil)
	}

	state, err := generateRandomState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	return s.oauth2Cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// HandleCallback exchanges the authorization code and signs a session for the linked user
func (s *GitHubOAuthService) HandleCallback(ctx context.Context, code, state, expectedState string) (*models.User, string, error) {
	if !s.IsEnabled() {
		return nil, "", apperrors.NewAppError(apperrors.CodeServiceUnavailable, "GitHub login is not configured", nil)
	}
	if state == "" || state != expectedState {
		return nil, "", apperrors.Unauthorized("invalid state parameter", apperrors.ErrInvalidCredentials)
	}
	if code == "" {
		return nil, "", apperrors.BadRequest("missing authorization code", apperrors.ErrInvalidInput)
	}

	oauthToken, err := s.oauth2Cfg.Exchange(ctx, code)
	if err != nil {
		return nil, "", apperrors.Upstream("failed to exchange authorization code", err)
	}

	profile, err := s.identity.GetAuthenticatedUser(ctx, oauthToken.AccessToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.UpsertUser(ctx, profile, oauthToken.AccessToken)
	if err != nil {
		return nil, "", err
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UpsertUser finds the user for a GitHub identity, links it to an account with the
// same email, or creates a new account. The access token is always refreshed.
func (s *GitHubOAuthService) UpsertUser(ctx context.Context, profile *service.GitHubProfile, accessToken string) (*models.User, error) {
	githubID := strconv.FormatInt(profile.ID, 10)
	displayName := profile.Name
	if displayName == "" {
		displayName = profile.Login
	}

	user, err := s.userRepo.FindByGitHubID(ctx, githubID)
	if err == nil {
		user.Name = displayName
		user.GitHubToken = &accessToken
		if profile.AvatarURL != "" {
			user.Avatar = &profile.AvatarURL
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("GitHub user signed in", logger.UserID(user.ID.String()))
		return user, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	email := strings.ToLower(profile.Email)
	if email != "" {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil {
			existing.GitHubID = &githubID
			existing.GitHubToken = &accessToken
			if existing.Avatar == nil && profile.AvatarURL != "" {
				existing.Avatar = &profile.AvatarURL
			}
			if err := s.userRepo.Update(ctx, existing); err != nil {
				return nil, err
			}
			s.log.Info("Linked GitHub identity to existing user", logger.UserID(existing.ID.String()))
			return existing, nil
		}
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
	} else {
		email = strings.ToLower(profile.Login) + "@github.user"
	}

	user = &models.User{
		Email:       email,
		Name:        displayName,
		GitHubID:    &githubID,
		GitHubToken: &accessToken,
	}
	if profile.AvatarURL != "" {
		user.Avatar = &profile.AvatarURL
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("Created user from GitHub login", logger.UserID(user.ID.String()))
	return user, nil
}

// generateRandomState generates a random state string for OAuth
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
