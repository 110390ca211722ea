package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/shipyard/internal/application/dto"
	"github.com/bravo68web/shipyard/internal/application/service"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// UserHandler handles dashboard and profile HTTP requests
type UserHandler struct {
	accounts AccountService
	log      *logger.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(accounts AccountService) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		log:      logger.Get().WithFields(logger.Component("user-handler")),
	}
}

// Dashboard handles GET /api/users/dashboard
func (h *UserHandler) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := h.accounts.GetDashboard(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.DashboardFromService(dashboard))
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.accounts.UpdateProfile(c.Request.Context(), user.ID, service.UpdateProfileRequest{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileUpdateFromModel(updated))
}
