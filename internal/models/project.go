package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
)

// ParseProjectStatus validates a raw project status string.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch ProjectStatus(s) {
	case ProjectActive, ProjectCompleted, ProjectOnHold:
		return ProjectStatus(s), true
	}
	return "", false
}

// Project is owned jointly by its tenant and the manager that created it:
// only that manager may mutate it, and it is only visible inside its tenant.
type Project struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string        `json:"name" gorm:"not null"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	TenantID    uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	ManagerID   uuid.UUID     `json:"manager_id" gorm:"type:uuid;not null;index"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relationships
	Teams []Team `json:"teams,omitempty" gorm:"many2many:project_teams"`
}

// TableName returns the table name for the Project model.
func (Project) TableName() string {
	return "projects"
}

// IsClosed reports whether the project no longer accepts task mutations.
func (p *Project) IsClosed() bool {
	return p.Status == ProjectCompleted
}
