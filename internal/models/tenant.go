package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary: every project, team, task, and report
// belongs to exactly one tenant. An owner account creates at most one tenant
// (enforced by the unique owner index).
type Tenant struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Accounts []Account `json:"accounts,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for the Tenant model.
func (Tenant) TableName() string {
	return "tenants"
}
