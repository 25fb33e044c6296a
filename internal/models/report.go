package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a member-submitted status report, optionally backed by an
// uploaded file in blob storage.
type Report struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	FileURL     *string    `json:"file_url,omitempty"`
	FileType    *string    `json:"file_type,omitempty"`
	CreatorID   uuid.UUID  `json:"creator_id" gorm:"type:uuid;not null;index"`
	TeamID      uuid.UUID  `json:"team_id" gorm:"type:uuid;not null;index"`
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Report model.
func (Report) TableName() string {
	return "reports"
}
