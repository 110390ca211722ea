package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/shipyard/internal/domain/models"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

func TestUserService_Dashboard(t *testing.T) {
	f := newProjectFixture(t, succeedingExecutor())
	users := NewUserService(memUserRepo{f.store}, memProjectRepo{f.store}, memDeploymentRepo{f.store})

	var deployed *models.Project
	for i := 0; i < 6; i++ {
		deployed = f.seedProject(t, f.owner, "p")
	}
	f.seedProject(t, f.other, "not mine")

	for i := 0; i < 12; i++ {
		_, err := f.svc.Deploy(context.Background(), f.owner.ID, deployed.ID)
		require.NoError(t, err)
		f.wait(t)
	}

	dash, err := users.GetDashboard(context.Background(), f.owner.ID)
	require.NoError(t, err)

	assert.Equal(t, f.owner.ID, dash.User.ID)
	assert.EqualValues(t, 6, dash.Stats.Total)
	assert.EqualValues(t, 5, dash.Stats.Pending)
	assert.EqualValues(t, 1, dash.Stats.Deployed)
	require.Len(t, dash.RecentProjects, 5)
	assert.Equal(t, deployed.ID, dash.RecentProjects[0].ID)
	assert.Len(t, dash.RecentProjects[0].Deployments, 1)
	require.Len(t, dash.RecentDeployments, 10)
	require.NotNil(t, dash.RecentDeployments[0].Project)
	assert.Equal(t, deployed.ID, dash.RecentDeployments[0].Project.ID)
}

func TestUserService_Profile(t *testing.T) {
	f := newProjectFixture(t, succeedingExecutor())
	users := NewUserService(memUserRepo{f.store}, memProjectRepo{f.store}, memDeploymentRepo{f.store})
	f.seedProject(t, f.owner, "a")
	f.seedProject(t, f.owner, "b")

	profile, err := users.GetProfile(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Projects, 2)
	assert.Equal(t, "b", profile.Projects[0].Name)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newProjectFixture(t, succeedingExecutor())
	users := NewUserService(memUserRepo{f.store}, memProjectRepo{f.store}, memDeploymentRepo{f.store})

	name := "Renamed"
	avatar := "https://example.com/me.png"
	user, err := users.UpdateProfile(context.Background(), f.owner.ID, UpdateProfileRequest{Name: &name, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, avatar, *user.Avatar)

	short := "x"
	_, err = users.UpdateProfile(context.Background(), f.owner.ID, UpdateProfileRequest{Name: &short})
	assert.True(t, apperrors.IsBadRequest(err))

	bad := "not a url"
	_, err = users.UpdateProfile(context.Background(), f.owner.ID, UpdateProfileRequest{Avatar: &bad})
	assert.True(t, apperrors.IsBadRequest(err))
}
