package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. Authorization decisions switch
// over it exhaustively; adding a role must be answered at every switch.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleManager, RoleMember:
		return Role(s), true
	}
	return "", false
}

// Account represents a user account. The tenant link is nil for an owner
// that has not created its company yet; it is always set for managers and
// members (assigned at invite time).
type Account struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string     `json:"name" gorm:"not null;index:idx_accounts_tenant_name,unique"`
	Email        string     `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid;index;index:idx_accounts_tenant_name,unique"`
	Verified     bool       `json:"verified" gorm:"not null;default:false"`
	PhotoURL     *string    `json:"photo_url,omitempty"`

	VerifyToken        *string    `json:"-" gorm:"index"`
	VerifyTokenExpires *time.Time `json:"-"`
	ResetToken         *string    `json:"-" gorm:"index"`
	ResetTokenExpires  *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Teams  []Team  `json:"teams,omitempty" gorm:"many2many:team_members"`
}

// TableName returns the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}
