package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/application/dto"
	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/internal/transport/http/middleware"
	apperrors "github.com/bravo68web/shipyard/pkg/errors"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// Validation errors report json field names instead of Go field names
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// respondError renders err as {error, message, details} with the status its code maps to
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = classify(err)
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error("Request failed",
			logger.Method(c.Request.Method),
			logger.Path(c.FullPath()),
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   appErr.Code.Slug(),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// classify maps bare sentinel errors onto an AppError
func classify(err error) *apperrors.AppError {
	switch {
	case apperrors.IsNotFound(err):
		return apperrors.NotFound("resource", err)
	case apperrors.IsUnauthorized(err):
		return apperrors.Unauthorized("", err)
	case apperrors.IsForbidden(err):
		return apperrors.Forbidden("", err)
	case apperrors.IsBadRequest(err):
		return apperrors.BadRequest(err.Error(), err)
	case apperrors.IsUpstream(err):
		return apperrors.Upstream("upstream service error", err)
	default:
		return apperrors.InternalError("An unexpected error occurred", err)
	}
}

// respondBindError renders a request binding failure as a 400 with the failing fields
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   apperrors.CodeBadRequest.Slug(),
			Message: "Validation failed: " + describe(verrs[0]),
			Details: map[string]interface{}{"fields": fields},
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   apperrors.CodeBadRequest.Slug(),
		Message: "Invalid request body",
	})
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}

// currentUser returns the authenticated user, rendering 401 when there is none
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   apperrors.CodeUnauthorized.Slug(),
			Message: "Authentication required",
		})
		return nil, false
	}
	return user, true
}

// uuidParam parses a path parameter; ids that are not UUIDs cannot exist, so they render 404
func uuidParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   apperrors.CodeNotFound.Slug(),
			Message: resource + " not found",
		})
		return uuid.Nil, false
	}
	return id, true
}
