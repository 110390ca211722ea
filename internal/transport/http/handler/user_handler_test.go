package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/domain/models"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

func userEngine(accounts *stubAccounts, user *models.User) *gin.Engine {
	h := NewUserHandler(accounts)
	engine := gin.New()
	api := engine.Group("/api/users", asUser(user))
	api.GET("/dashboard", h.Dashboard)
	api.PUT("/profile", h.UpdateProfile)
	return engine
}

func TestDashboard(t *testing.T) {
	user := testUser()
	p := testProject(user)
	accounts := &stubAccounts{dashboard: &service.Dashboard{
		User:           user,
		Stats:          models.ProjectStatusCounts{Total: 3, Deployed: 1, Failed: 1, Pending: 1},
		RecentProjects: []*models.Project{p},
		RecentDeployments: []*models.Deployment{
			{ID: uuid.New(), Status: models.DeploymentStatusFailed, ProjectID: p.ID, Project: p},
		},
	}}
	engine := userEngine(accounts, user)

	rec := perform(t, engine, http.MethodGet, "/api/users/dashboard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["total"])
	assert.EqualValues(t, 0, stats["building"])
	assert.Len(t, body["recentProjects"], 1)
	deployments := body["recentDeployments"].([]interface{})
	require.Len(t, deployments, 1)
	assert.Equal(t, "site", deployments[0].(map[string]interface{})["project"].(map[string]interface{})["name"])
}

func TestUpdateProfile(t *testing.T) {
	user := testUser()
	updated := *user
	updated.Name = "Ada L"
	accounts := &stubAccounts{updated: &updated}
	engine := userEngine(accounts, user)

	rec := perform(t, engine, http.MethodPut, "/api/users/profile", map[string]string{"name": "Ada L"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Profile updated successfully", body["message"])
	assert.Equal(t, "Ada L", body["user"].(map[string]interface{})["name"])
	require.NotNil(t, accounts.lastUpdate.Name)
	assert.Nil(t, accounts.lastUpdate.Avatar)
}

func TestUpdateProfile_Invalid(t *testing.T) {
	user := testUser()

	t.Run("binding", func(t *testing.T) {
		engine := userEngine(&stubAccounts{}, user)
		rec := perform(t, engine, http.MethodPut, "/api/users/profile", map[string]string{"avatar": "not-a-url"})
		body := assertError(t, rec, http.StatusBadRequest, "bad_request")
		assert.Equal(t, []interface{}{"avatar"}, body["details"].(map[string]interface{})["fields"])
	})

	t.Run("service", func(t *testing.T) {
		engine := userEngine(&stubAccounts{err: apperrors.ValidationError("avatar", "avatar must be a valid URL")}, user)
		rec := perform(t, engine, http.MethodPut, "/api/users/profile", map[string]string{"avatar": "ftp://host/a.png"})
		assertError(t, rec, http.StatusBadRequest, "bad_request")
	})
}
