package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that signs in with a password, a GitHub identity, or both
type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Password    *string   `json:"-" gorm:"size:255"` // bcrypt hash
	GitHubID    *string   `json:"githubId,omitempty" gorm:"column:github_id;uniqueIndex;size:64"`
	GitHubToken *string   `json:"-" gorm:"column:github_token;size:255"` // OAuth access token
	Avatar      *string   `json:"avatar,omitempty" gorm:"size:1024"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the user can sign in with a password
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// GitHubAccessToken returns the stored OAuth token or an empty string
func (u *User) GitHubAccessToken() string {
	if u.GitHubToken == nil {
		return ""
	}
	return *u.GitHubToken
}
