package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

func newTestOAuthService(store *memStore, cfg *config.GitHubConfig) *GitHubOAuthService {
	return NewGitHubOAuthService(cfg, nil, memUserRepo{store}, newTestAuthService(store))
}

func enabledGitHubConfig() *config.GitHubConfig {
	return &config.GitHubConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		CallbackURL:  "http://localhost:5000/api/auth/github/callback",
		Scopes:       []string{"user:email", "repo"},
	}
}

func TestUpsertUser_CreatesWithSynthesizedEmail(t *testing.T) {
	store := newMemStore()
	svc := newTestOAuthService(store, enabledGitHubConfig())

	user, err := svc.UpsertUser(context.Background(), &service.GitHubProfile{
		ID: 99, Login: "Octocat", AvatarURL: "https://avatars/1",
	}, "gho_1")
	require.NoError(t, err)

	assert.Equal(t, "octocat@github.user", user.Email)
	assert.Equal(t, "Octocat", user.Name)
	assert.Equal(t, "99", *user.GitHubID)
	assert.Equal(t, "gho_1", user.GitHubAccessToken())
	assert.Equal(t, "https://avatars/1", *user.Avatar)
	assert.False(t, user.HasPassword())
}

func TestUpsertUser_UpdatesExistingGitHubUser(t *testing.T) {
	store := newMemStore()
	svc := newTestOAuthService(store, enabledGitHubConfig())
	profile := &service.GitHubProfile{ID: 7, Login: "dev", Name: "Dev", Email: "dev@example.com"}

	first, err := svc.UpsertUser(context.Background(), profile, "gho_old")
	require.NoError(t, err)

	profile.Name = "Dev Renamed"
	second, err := svc.UpsertUser(context.Background(), profile, "gho_new")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Dev Renamed", second.Name)
	assert.Equal(t, "gho_new", second.GitHubAccessToken())
	assert.Len(t, store.users, 1)
}

func TestUpsertUser_LinksExistingEmail(t *testing.T) {
	store := newMemStore()
	svc := newTestOAuthService(store, enabledGitHubConfig())
	hash := "hash"
	avatar := "https://mine"
	existing := store.addUser(&models.User{Email: "ada@example.com", Name: "Ada", Password: &hash, Avatar: &avatar})

	user, err := svc.UpsertUser(context.Background(), &service.GitHubProfile{
		ID: 5, Login: "ada", Email: "Ada@Example.com", AvatarURL: "https://github-avatar",
	}, "gho_ada")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "5", *user.GitHubID)
	assert.Equal(t, "gho_ada", user.GitHubAccessToken())
	assert.Equal(t, "https://mine", *user.Avatar)
	assert.True(t, user.HasPassword())
}

func TestGenerateAuthURL(t *testing.T) {
	svc := newTestOAuthService(newMemStore(), enabledGitHubConfig())

	authURL, state, err := svc.GenerateAuthURL()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "user:email repo", u.Query().Get("scope"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}

func TestGenerateAuthURL_NotConfigured(t *testing.T) {
	svc := newTestOAuthService(newMemStore(), &config.GitHubConfig{})
	assert.False(t, svc.IsEnabled())

	_, _, err := svc.GenerateAuthURL()
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeServiceUnavailable, appErr.Code)
}

func TestHandleCallback_RejectsBadState(t *testing.T) {
	svc := newTestOAuthService(newMemStore(), enabledGitHubConfig())

	_, _, err := svc.HandleCallback(context.Background(), "code", "state-a", "state-b")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, _, err = svc.HandleCallback(context.Background(), "", "s", "s")
	assert.True(t, apperrors.IsBadRequest(err))
}
