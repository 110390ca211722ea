package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "PENDING"
	ProjectStatusBuilding ProjectStatus = "BUILDING"
	ProjectStatusDeployed ProjectStatus = "DEPLOYED"
	ProjectStatusFailed   ProjectStatus = "FAILED"
)

// Project is a GitHub repository tracked for deployment
type Project struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string        `json:"name" gorm:"not null;size:100"`
	GitHubURL   string        `json:"githubUrl" gorm:"column:github_url;not null;size:512"`
	Description *string       `json:"description" gorm:"size:500"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	UserID      uuid.UUID     `json:"userId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updatedAt" gorm:"autoUpdateTime;index"`

	User        *User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Deployments []Deployment `json:"deployments,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Commits     []Commit     `json:"commits,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// ProjectStatusCounts is the per-status project tally shown on the dashboard
type ProjectStatusCounts struct {
	Total    int64
	Pending  int64
	Building int64
	Deployed int64
	Failed   int64
}

// ProjectListing is a project as shown in paginated lists: its newest deployment,
// its newest commits, and the total number of each.
type ProjectListing struct {
	Project         Project
	DeploymentCount int64
	CommitCount     int64
}

// ProjectUpdate carries the fields of a partial project update; nil fields are left unchanged
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// IsEmpty reports whether the update changes nothing
func (u ProjectUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil
}
