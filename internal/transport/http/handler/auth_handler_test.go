package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/shipyard/internal/domain/models"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

const frontend = "http://localhost:3000"

func authEngine(auth *stubAuth, gh *stubGitHubLogin, accounts *stubAccounts, user *models.User) *gin.Engine {
	h := NewAuthHandler(auth, gh, accounts, frontend+"/", false)
	engine := gin.New()
	engine.POST("/api/auth/register", h.Register)
	engine.POST("/api/auth/login", h.Login)
	engine.GET("/api/auth/github", h.GitHubRedirect)
	engine.GET("/api/auth/github/callback", h.GitHubCallback)
	engine.GET("/api/auth/profile", asUser(user), h.Profile)
	return engine
}

func TestRegister(t *testing.T) {
	engine := authEngine(&stubAuth{token: "tok"}, nil, nil, nil)

	rec := perform(t, engine, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.Equal(t, "tok", body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "password")
}

func TestRegister_InvalidBody(t *testing.T) {
	engine := authEngine(&stubAuth{token: "tok"}, nil, nil, nil)

	rec := perform(t, engine, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "A", "email": "not-an-email", "password": "secret1",
	})

	body := assertError(t, rec, http.StatusBadRequest, "bad_request")
	assert.Contains(t, body["message"], "Validation failed")
	details := body["details"].(map[string]interface{})
	assert.ElementsMatch(t, []interface{}{"name", "email"}, details["fields"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	engine := authEngine(&stubAuth{err: apperrors.ValidationError("email", "User already exists with this email")}, nil, nil, nil)

	rec := perform(t, engine, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	})

	body := assertError(t, rec, http.StatusBadRequest, "bad_request")
	assert.Equal(t, "User already exists with this email", body["message"])
	assert.Equal(t, map[string]interface{}{"field": "email"}, body["details"])
}

func TestLogin(t *testing.T) {
	user := testUser()
	engine := authEngine(&stubAuth{user: user, token: "tok"}, nil, nil, nil)

	rec := perform(t, engine, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "tok", body["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	engine := authEngine(&stubAuth{err: apperrors.Unauthorized("Invalid credentials", apperrors.ErrInvalidCredentials)}, nil, nil, nil)

	rec := perform(t, engine, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})

	body := assertError(t, rec, http.StatusUnauthorized, "unauthorized")
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestGitHubRedirect(t *testing.T) {
	gh := &stubGitHubLogin{enabled: true, state: "abc"}
	engine := authEngine(&stubAuth{}, gh, nil, nil)

	rec := perform(t, engine, http.MethodGet, "/api/auth/github", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://github.com/login/oauth/authorize?state=abc", rec.Header().Get("Location"))

	var state *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.Equal(t, "abc", state.Value)
	assert.True(t, state.HttpOnly)
}

func TestGitHubRedirect_NotConfigured(t *testing.T) {
	engine := authEngine(&stubAuth{}, &stubGitHubLogin{}, nil, nil)

	rec := perform(t, engine, http.MethodGet, "/api/auth/github", nil)

	assertError(t, rec, http.StatusServiceUnavailable, "service_unavailable")
}

func callback(engine *gin.Engine, query string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/github/callback"+query, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestGitHubCallback(t *testing.T) {
	gh := &stubGitHubLogin{enabled: true, user: testUser(), token: "session.jwt"}
	engine := authEngine(&stubAuth{}, gh, nil, nil)

	rec := callback(engine, "?code=c0de&state=abc", &http.Cookie{Name: oauthStateCookie, Value: "abc"})

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+"/auth/callback?token=session.jwt", rec.Header().Get("Location"))
	assert.Equal(t, "c0de", gh.gotCode)
	assert.Equal(t, "abc", gh.gotState)
	assert.Equal(t, "abc", gh.gotExpected)
}

func TestGitHubCallback_Failures(t *testing.T) {
	tests := []struct {
		name     string
		gh       *stubGitHubLogin
		query    string
		cookie   *http.Cookie
		location string
	}{
		{
			name:     "missing state cookie",
			gh:       &stubGitHubLogin{enabled: true},
			query:    "?code=c&state=abc",
			location: frontend + "/login?error=invalid_state",
		},
		{
			name:     "state mismatch",
			gh:       &stubGitHubLogin{enabled: true, err: apperrors.Unauthorized("invalid state parameter", nil)},
			query:    "?code=c&state=other",
			cookie:   &http.Cookie{Name: oauthStateCookie, Value: "abc"},
			location: frontend + "/login?error=invalid_state",
		},
		{
			name:     "provider error",
			gh:       &stubGitHubLogin{enabled: true},
			query:    "?error=access_denied",
			location: frontend + "/login?error=access_denied",
		},
		{
			name:     "exchange failed",
			gh:       &stubGitHubLogin{enabled: true, err: apperrors.Upstream("failed to exchange authorization code", nil)},
			query:    "?code=c&state=abc",
			cookie:   &http.Cookie{Name: oauthStateCookie, Value: "abc"},
			location: frontend + "/login?error=authentication_failed",
		},
		{
			name:     "not configured",
			gh:       &stubGitHubLogin{},
			query:    "?code=c&state=abc",
			location: frontend + "/login?error=github_not_configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := authEngine(&stubAuth{}, tt.gh, nil, nil)

			rec := callback(engine, tt.query, tt.cookie)

			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestProfile(t *testing.T) {
	user := testUser()
	profile := *user
	profile.Projects = []models.Project{{Name: "site", Status: models.ProjectStatusDeployed}}
	engine := authEngine(&stubAuth{}, nil, &stubAccounts{profile: &profile}, user)

	rec := perform(t, engine, http.MethodGet, "/api/auth/profile", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	u := body["user"].(map[string]interface{})
	assert.Equal(t, "Ada", u["name"])
	projects := u["projects"].([]interface{})
	require.Len(t, projects, 1)
	assert.Equal(t, "DEPLOYED", projects[0].(map[string]interface{})["status"])
}

func TestProfile_Unauthenticated(t *testing.T) {
	engine := authEngine(&stubAuth{}, nil, &stubAccounts{}, nil)

	rec := perform(t, engine, http.MethodGet, "/api/auth/profile", nil)

	assertError(t, rec, http.StatusUnauthorized, "unauthorized")
}
