// Package cascade implements the multi-entity write chains: account
// removal, project close and delete, and team membership edits. Every
// chain runs inside a single store transaction so a mid-chain failure
// leaves no partial state. Side effects that live outside the database
// (session revocation, notifications) run only after the commit.
package cascade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/tenancy"
)

// SessionRevoker invalidates all live sessions for an account.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, accountID uuid.UUID) error
}

// Manager runs the cascading write chains.
type Manager struct {
	store    store.Store
	sessions SessionRevoker
	notifier notify.Notifier
}

func NewManager(s store.Store, sessions SessionRevoker, notifier notify.Notifier) *Manager {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Manager{store: s, sessions: sessions, notifier: notifier}
}

// DeleteAccount removes a manager or member account and everything hanging
// off it. The team list is captured before membership rows are touched,
// because the later project-unlink step needs it. Deleting an owner account
// is refused; deleting an already-deleted account reports not found.
func (m *Manager) DeleteAccount(ctx context.Context, p tenancy.Principal, accountID uuid.UUID) error {
	err := m.store.Transact(ctx, func(tx store.Store) error {
		target, err := tx.AccountInTenant(ctx, p.TenantID, accountID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOwner {
			return fmt.Errorf("%w: owner accounts cannot be removed", apperr.ErrValidation)
		}

		teamIDs, err := tx.TeamIDsForMember(ctx, p.TenantID, accountID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTasksByAssignee(ctx, p.TenantID, accountID); err != nil {
			return err
		}
		for _, teamID := range teamIDs {
			if err := tx.RemoveTeamMember(ctx, p.TenantID, teamID, accountID); err != nil {
				return err
			}
		}
		if len(teamIDs) > 0 {
			if err := tx.UnlinkTeamsFromProjects(ctx, p.TenantID, teamIDs); err != nil {
				return err
			}
		}
		if target.Role == models.RoleManager {
			managed, _, err := tx.ListTeams(ctx, p.TenantID, store.TeamFilter{ManagerID: &accountID})
			if err != nil {
				return err
			}
			managedIDs := make([]uuid.UUID, 0, len(managed))
			for _, t := range managed {
				managedIDs = append(managedIDs, t.ID)
			}
			if err := tx.UnlinkTeamsFromProjects(ctx, p.TenantID, managedIDs); err != nil {
				return err
			}
		}
		return tx.DeleteAccount(ctx, p.TenantID, accountID)
	})
	if err != nil {
		return err
	}

	if m.sessions != nil {
		if err := m.sessions.RevokeAll(ctx, accountID); err != nil {
			logrus.WithError(err).WithField("account_id", accountID).Warn("failed to revoke sessions")
		}
	}
	if err := m.notifier.Publish(notify.Event{
		Type:       notify.EventAccountDeleted,
		TenantID:   p.TenantID,
		AccountID:  accountID,
		OccurredAt: time.Now(),
	}); err != nil {
		logrus.WithError(err).Warn("failed to publish account removal")
	}
	return nil
}

// CloseProject marks the project completed and bulk-completes its open
// tasks in the same transaction. Bulk completion bypasses the per-task
// transition rules on purpose: project close is the one operation allowed
// to force every task to its terminal state. The tenant owner is notified
// after commit.
func (m *Manager) CloseProject(ctx context.Context, p tenancy.Principal, projectID uuid.UUID) (*models.Project, error) {
	now := time.Now()
	var project *models.Project
	err := m.store.Transact(ctx, func(tx store.Store) error {
		var err error
		project, err = tx.ProjectByID(ctx, p.TenantID, projectID)
		if err != nil {
			return err
		}
		if err := p.AssertOwnership(project.TenantID, project.ManagerID); err != nil {
			return err
		}
		if project.IsClosed() {
			return fmt.Errorf("%w: project is already completed", apperr.ErrValidation)
		}

		if err := tx.CompleteTasksByProject(ctx, p.TenantID, projectID, now); err != nil {
			return err
		}
		project.Status = models.ProjectCompleted
		return tx.UpdateProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	tenant, err := m.store.TenantByID(ctx, p.TenantID)
	if err != nil {
		logrus.WithError(err).WithField("tenant_id", p.TenantID).Warn("skipping close notification, tenant lookup failed")
		return project, nil
	}
	if err := m.notifier.Publish(notify.Event{
		Type:       notify.EventProjectClosed,
		TenantID:   p.TenantID,
		AccountID:  tenant.OwnerID,
		Subject:    project.Name,
		OccurredAt: now,
	}); err != nil {
		logrus.WithError(err).Warn("failed to publish project close")
	}
	return project, nil
}

// DeleteProject removes a project together with every task and team
// attached to it. Managers may only delete their own completed projects;
// the tenant owner may delete any tenant project regardless of status.
func (m *Manager) DeleteProject(ctx context.Context, p tenancy.Principal, projectID uuid.UUID) error {
	return m.store.Transact(ctx, func(tx store.Store) error {
		project, err := tx.ProjectByID(ctx, p.TenantID, projectID)
		if err != nil {
			return err
		}
		if p.Role == models.RoleOwner {
			if err := p.AssertScope(project.TenantID); err != nil {
				return err
			}
		} else {
			if err := p.AssertOwnership(project.TenantID, project.ManagerID); err != nil {
				return err
			}
			if !project.IsClosed() {
				return fmt.Errorf("%w: only completed projects can be deleted", apperr.ErrValidation)
			}
		}

		if err := tx.DeleteTasksByProject(ctx, p.TenantID, projectID); err != nil {
			return err
		}
		if err := tx.DeleteTeamsByProject(ctx, p.TenantID, projectID); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, p.TenantID, projectID)
	})
}

// AddTeamMember attaches an account to a manager's team. Adding an account
// that is already on the team is a no-op.
func (m *Manager) AddTeamMember(ctx context.Context, p tenancy.Principal, teamID, accountID uuid.UUID) error {
	return m.store.Transact(ctx, func(tx store.Store) error {
		team, err := tx.TeamByID(ctx, p.TenantID, teamID)
		if err != nil {
			return err
		}
		if err := p.AssertOwnership(team.TenantID, team.ManagerID); err != nil {
			return err
		}
		if _, err := tx.AccountInTenant(ctx, p.TenantID, accountID); err != nil {
			return err
		}
		return tx.AddTeamMember(ctx, p.TenantID, teamID, accountID)
	})
}

// RemoveTeamMember detaches an account from a team and deletes that
// member's tasks in this team only. Their tasks in other teams are kept.
func (m *Manager) RemoveTeamMember(ctx context.Context, p tenancy.Principal, teamID, accountID uuid.UUID) error {
	return m.store.Transact(ctx, func(tx store.Store) error {
		team, err := tx.TeamByID(ctx, p.TenantID, teamID)
		if err != nil {
			return err
		}
		if err := p.AssertOwnership(team.TenantID, team.ManagerID); err != nil {
			return err
		}
		if err := tx.DeleteTasksByAssigneeInTeam(ctx, p.TenantID, accountID, teamID); err != nil {
			return err
		}
		return tx.RemoveTeamMember(ctx, p.TenantID, teamID, accountID)
	})
}
