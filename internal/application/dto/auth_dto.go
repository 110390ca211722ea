package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bravo68web/shipyard/internal/domain/models"
)

// RegisterRequest represents a password registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserInfo represents the public part of a user in responses
type UserInfo struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Avatar    *string    `json:"avatar"`
	GitHubID  *string    `json:"githubId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Token   string   `json:"token"`
}

// ProfileProject is a project as listed on the profile
type ProfileProject struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Status    models.ProjectStatus `json:"status" enums:"PENDING,BUILDING,DEPLOYED,FAILED"`
	CreatedAt time.Time            `json:"createdAt"`
}

// ProfileUser is the signed-in user with every owned project
type ProfileUser struct {
	UserInfo
	Projects []ProfileProject `json:"projects"`
}

// ProfileResponse wraps the profile user
type ProfileResponse struct {
	User ProfileUser `json:"user"`
}

// UserFromModel converts a user to its public representation
func UserFromModel(user *models.User) UserInfo {
	return UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		GitHubID:  user.GitHubID,
		CreatedAt: user.CreatedAt,
	}
}

// ProfileFromModel converts a user and its loaded projects
func ProfileFromModel(user *models.User) ProfileResponse {
	projects := make([]ProfileProject, 0, len(user.Projects))
	for _, p := range user.Projects {
		projects = append(projects, ProfileProject{
			ID:        p.ID,
			Name:      p.Name,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}
	return ProfileResponse{User: ProfileUser{UserInfo: UserFromModel(user), Projects: projects}}
}
