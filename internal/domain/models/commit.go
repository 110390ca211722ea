package models

import (
	"time"

	"github.com/google/uuid"
)

// Commit is a cached copy of one upstream commit
type Commit struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SHA       string    `json:"sha" gorm:"not null;size:64;uniqueIndex:idx_commits_project_sha"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Author    string    `json:"author" gorm:"not null;size:255"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"size:512"`
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;not null;uniqueIndex:idx_commits_project_sha"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName returns the table name for the Commit model
func (Commit) TableName() string {
	return "commits"
}
