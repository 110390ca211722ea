package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v57/github"

	"github.com/bravo68web/shipyard/internal/domain/service"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// GetAuthenticatedUser fetches the profile of the token owner
func (g *Gateway) GetAuthenticatedUser(ctx context.Context, token string) (*service.GitHubProfile, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("GitHub access token required", apperrors.ErrGitHubAuthRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client := g.client(ctx, token)
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("Failed to fetch GitHub profile: %s", upstreamMessage(err)), err)
	}

	profile := &service.GitHubProfile{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Email:     user.GetEmail(),
		AvatarURL: user.GetAvatarURL(),
	}

	if profile.Email == "" {
		// needs the user:email scope; a missing email is not fatal
		emails, _, err := client.Users.ListEmails(ctx, &gh.ListOptions{PerPage: 100})
		if err != nil {
			g.log.Warn("Could not list GitHub emails", logger.String("login", profile.Login), logger.Error(err))
		}
		for _, e := range emails {
			if e.GetPrimary() && e.GetVerified() {
				profile.Email = e.GetEmail()
				break
			}
		}
	}

	return profile, nil
}

var (
	_ service.RepositoryGateway = (*Gateway)(nil)
	_ service.IdentityProvider  = (*Gateway)(nil)
)
