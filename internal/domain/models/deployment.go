package models

import (
	"time"

	"github.com/google/uuid"
)

// DeploymentStatus is the state of a single deployment attempt
type DeploymentStatus string

const (
	DeploymentStatusPending  DeploymentStatus = "PENDING"
	DeploymentStatusBuilding DeploymentStatus = "BUILDING"
	DeploymentStatusSuccess  DeploymentStatus = "SUCCESS"
	DeploymentStatusFailed   DeploymentStatus = "FAILED"
)

// IsTerminal reports whether no further transition is expected
func (s DeploymentStatus) IsTerminal() bool {
	return s == DeploymentStatusSuccess || s == DeploymentStatusFailed
}

// Deployment is one attempt to deploy a project.
// It is created in BUILDING and updated exactly once to SUCCESS or FAILED.
type Deployment struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Status       DeploymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	URL          *string          `json:"url" gorm:"size:512"`
	Logs         *string          `json:"logs" gorm:"type:text"`
	Error        *string          `json:"error" gorm:"type:text"`
	AISuggestion *string          `json:"aiSuggestion" gorm:"column:ai_suggestion;type:text"`
	ProjectID    uuid.UUID        `json:"projectId" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time        `json:"updatedAt" gorm:"autoUpdateTime"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName returns the table name for the Deployment model
func (Deployment) TableName() string {
	return "deployments"
}

// DeploymentResult is the terminal update applied to a deployment and its project
type DeploymentResult struct {
	Status       DeploymentStatus
	URL          *string
	Logs         *string
	Error        *string
	AISuggestion *string
}

// ProjectStatus returns the project status implied by the deployment outcome
func (r DeploymentResult) ProjectStatus() ProjectStatus {
	if r.Status == DeploymentStatusSuccess {
		return ProjectStatusDeployed
	}
	return ProjectStatusFailed
}
