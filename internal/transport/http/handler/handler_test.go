package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	user  *models.User
	token string
	err   error
}

func (s *stubAuth) Register(_ context.Context, name, email, _ string) (*models.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return &models.User{ID: uuid.New(), Name: name, Email: email}, s.token, nil
}

func (s *stubAuth) Login(context.Context, string, string) (*models.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.token, nil
}

func (s *stubAuth) AuthenticateSession(context.Context, string) (*models.User, error) {
	return s.user, s.err
}

func (s *stubAuth) IssueToken(*models.User) (string, error) { return s.token, nil }

func (s *stubAuth) HashPassword(p string) (string, error) { return p, nil }

func (s *stubAuth) VerifyPassword(string, string) error { return nil }

type stubGitHubLogin struct {
	enabled bool
	state   string
	user    *models.User
	token   string
	err     error

	gotState, gotExpected, gotCode string
}

func (s *stubGitHubLogin) IsEnabled() bool { return s.enabled }

func (s *stubGitHubLogin) GenerateAuthURL() (string, string, error) {
	return "https://github.com/login/oauth/authorize?state=" + s.state, s.state, nil
}

func (s *stubGitHubLogin) HandleCallback(_ context.Context, code, state, expected string) (*models.User, string, error) {
	s.gotCode, s.gotState, s.gotExpected = code, state, expected
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.token, nil
}

type stubAccounts struct {
	profile   *models.User
	dashboard *service.Dashboard
	updated   *models.User
	err       error

	lastUpdate service.UpdateProfileRequest
}

func (s *stubAccounts) GetProfile(context.Context, uuid.UUID) (*models.User, error) {
	return s.profile, s.err
}

func (s *stubAccounts) GetDashboard(context.Context, uuid.UUID) (*service.Dashboard, error) {
	return s.dashboard, s.err
}

func (s *stubAccounts) UpdateProfile(_ context.Context, _ uuid.UUID, req service.UpdateProfileRequest) (*models.User, error) {
	s.lastUpdate = req
	return s.updated, s.err
}

type stubProjects struct {
	err error

	project    *models.Project
	page       *service.ProjectPage
	detail     *service.ProjectDetail
	deployment *models.Deployment
	commits    []*models.Commit
	analysis   *service.AnalysisResult
	logs       *service.DeploymentLog

	gotOwner        uuid.UUID
	gotProject      uuid.UUID
	gotPage         int
	gotLimit        int
	gotCreate       service.CreateProjectInput
	gotUpdate       models.ProjectUpdate
	deleted         bool
	gotDeploymentID uuid.UUID
}

func (s *stubProjects) CreateProject(_ context.Context, owner uuid.UUID, in service.CreateProjectInput) (*models.Project, error) {
	s.gotOwner, s.gotCreate = owner, in
	return s.project, s.err
}

func (s *stubProjects) ListProjects(_ context.Context, owner uuid.UUID, page, limit int) (*service.ProjectPage, error) {
	s.gotOwner, s.gotPage, s.gotLimit = owner, page, limit
	return s.page, s.err
}

func (s *stubProjects) GetProject(_ context.Context, owner, id uuid.UUID) (*service.ProjectDetail, error) {
	s.gotOwner, s.gotProject = owner, id
	return s.detail, s.err
}

func (s *stubProjects) UpdateProject(_ context.Context, owner, id uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	s.gotOwner, s.gotProject, s.gotUpdate = owner, id, update
	return s.project, s.err
}

func (s *stubProjects) DeleteProject(_ context.Context, owner, id uuid.UUID) error {
	s.gotOwner, s.gotProject = owner, id
	s.deleted = s.err == nil
	return s.err
}

func (s *stubProjects) Deploy(_ context.Context, owner, id uuid.UUID) (*models.Deployment, error) {
	s.gotOwner, s.gotProject = owner, id
	return s.deployment, s.err
}

func (s *stubProjects) RefreshCommits(_ context.Context, owner *models.User, id uuid.UUID) ([]*models.Commit, error) {
	s.gotOwner, s.gotProject = owner.ID, id
	return s.commits, s.err
}

func (s *stubProjects) Analyze(_ context.Context, owner, id uuid.UUID) (*service.AnalysisResult, error) {
	s.gotOwner, s.gotProject = owner, id
	return s.analysis, s.err
}

func (s *stubProjects) GetDeploymentLogs(_ context.Context, owner, id, deploymentID uuid.UUID) (*service.DeploymentLog, error) {
	s.gotOwner, s.gotProject, s.gotDeploymentID = owner, id, deploymentID
	return s.logs, s.err
}

// asUser stands in for the auth middleware
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(string(middleware.UserContextKey), user)
		}
		c.Next()
	}
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, slug string) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, slug, body["error"])
	assert.NotEmpty(t, body["message"])
	return body
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
}
