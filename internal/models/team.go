package models

import (
	"time"

	"github.com/google/uuid"
)

// Team groups members under a manager within a project. Team names are
// unique per tenant.
type Team struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string     `json:"name" gorm:"not null;index:idx_teams_tenant_name,unique"`
	Description string     `json:"description"`
	TenantID    uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index;index:idx_teams_tenant_name,unique"`
	ManagerID   uuid.UUID  `json:"manager_id" gorm:"type:uuid;not null;index"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Members []Account `json:"members,omitempty" gorm:"many2many:team_members"`
}

// TableName returns the table name for the Team model.
func (Team) TableName() string {
	return "teams"
}
