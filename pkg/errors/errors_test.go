package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_Slug(t *testing.T) {
	tests := map[ErrorCode]string{
		CodeBadRequest:          "bad_request",
		CodeUnauthorized:        "unauthorized",
		CodeForbidden:           "forbidden",
		CodeNotFound:            "not_found",
		CodeConflict:            "conflict",
		CodeBadGateway:          "upstream_error",
		CodeServiceUnavailable:  "service_unavailable",
		CodeInternalServerError: "internal_error",
	}
	for code, slug := range tests {
		assert.Equal(t, slug, code.Slug(), "code %d", code)
	}
}

func TestAppError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := DatabaseError("find project", cause)

	assert.Equal(t, "database find project failed: connection refused", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "project not found", NotFound("project", nil).Error())
}

func TestConstructorDefaults(t *testing.T) {
	assert.Equal(t, "authentication required", Unauthorized("", nil).Message)
	assert.Equal(t, "access denied", Forbidden("", nil).Message)
	assert.Equal(t, "invalid request", BadRequest("", nil).Message)
	assert.Equal(t, "an internal error occurred", InternalError("", nil).Message)
}

func TestValidationError(t *testing.T) {
	err := ValidationError("email", "User already exists")

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Equal(t, map[string]interface{}{"field": "email"}, err.Details)
	assert.True(t, IsBadRequest(err))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpstream(t *testing.T) {
	err := Upstream("GitHub API error: rate limited", errors.New("403"))

	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.True(t, IsUpstream(err))
	assert.True(t, IsUpstream(fmt.Errorf("fetch commits: %w", err)))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestPredicates(t *testing.T) {
	wrapped := func(err error) error { return fmt.Errorf("service: %w", err) }

	assert.True(t, IsNotFound(wrapped(NotFound("deployment", nil))))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(Conflict("deployment already completed", nil)))

	assert.True(t, IsUnauthorized(wrapped(Unauthorized("Invalid credentials", ErrInvalidCredentials))))
	assert.True(t, IsUnauthorized(ErrUnauthorized))

	assert.True(t, IsForbidden(Forbidden("", nil)))
	assert.True(t, IsForbidden(ErrForbidden))

	assert.True(t, IsConflict(Conflict("user already exists", nil)))
	assert.True(t, IsConflict(ErrUserExists))

	assert.True(t, IsBadRequest(ErrInvalidRepositoryURL))
	assert.False(t, IsBadRequest(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	cause := errors.New("boom")
	err := Wrap(cause, "archive logs")
	assert.EqualError(t, err, "archive logs: boom")
	assert.ErrorIs(t, err, cause)

	coded := WrapWithCode(cause, CodeServiceUnavailable, "github login disabled")
	assert.Equal(t, http.StatusServiceUnavailable, coded.HTTPStatus())
}
