// Package tenancy is the authorization core: it defines the resolved
// principal and the scope assertions every other component goes through.
// Tenant filtering itself lives in the store layer, where tenant id is a
// required argument on every read and write; the assertions here cover the
// cases where an entity is already in hand.
package tenancy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

// Principal is an authenticated caller with its effective company scope.
// For owners the tenant id is the tenant they created (uuid.Nil before
// company creation); for managers and members it is assigned at invite
// time.
type Principal struct {
	AccountID uuid.UUID   `json:"account_id"`
	TenantID  uuid.UUID   `json:"tenant_id"`
	Role      models.Role `json:"role"`
}

// HasTenant reports whether the principal is attached to a company yet.
// Only a fresh owner account can be without one.
func (p Principal) HasTenant() bool {
	return p.TenantID != uuid.Nil
}

// AssertScope fails unless the entity belongs to the principal's tenant.
// A scope failure is indistinguishable from a missing entity further up, so
// callers must stop immediately and emit nothing before checking it.
func (p Principal) AssertScope(entityTenant uuid.UUID) error {
	if !p.HasTenant() || entityTenant != p.TenantID {
		return apperr.ErrForbidden
	}
	return nil
}

// AssertOwnership fails unless the entity is in scope and owned by the
// principal (e.g. a project's manager or a task's assignee).
func (p Principal) AssertOwnership(entityTenant, ownerID uuid.UUID) error {
	if err := p.AssertScope(entityTenant); err != nil {
		return err
	}
	if ownerID != p.AccountID {
		return apperr.ErrForbidden
	}
	return nil
}

// DueSoonWindow returns the forward-looking deadline horizon for this
// principal's dashboards. Owners get a week; managers and members get the
// tighter triage window.
func (p Principal) DueSoonWindow() (time.Duration, error) {
	switch p.Role {
	case models.RoleOwner:
		return 7 * 24 * time.Hour, nil
	case models.RoleManager, models.RoleMember:
		return 3 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown role %q", p.Role)
	}
}

// FromAccount builds the principal for a verified account. The owner's
// tenant (nil before company creation) comes from the tenants table; other
// roles carry their tenant link on the account row.
func FromAccount(acc *models.Account, ownedTenant *models.Tenant) (Principal, error) {
	p := Principal{AccountID: acc.ID, Role: acc.Role}
	switch acc.Role {
	case models.RoleOwner:
		if ownedTenant != nil {
			p.TenantID = ownedTenant.ID
		}
	case models.RoleManager, models.RoleMember:
		if acc.TenantID == nil {
			return Principal{}, fmt.Errorf("%w: account %s has no tenant", apperr.ErrForbidden, acc.ID)
		}
		p.TenantID = *acc.TenantID
	default:
		return Principal{}, fmt.Errorf("unknown role %q", acc.Role)
	}
	return p, nil
}
