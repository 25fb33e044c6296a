// Package store is the persistence boundary. Every read or write of a
// tenant-owned entity takes the caller's tenant id as a required argument,
// so tenant filtering is a property of the query itself rather than a
// re-check after fetch. A row outside the caller's tenant and a row that
// does not exist are both reported as apperr.ErrNotFound.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

// Page is a normalized pagination request.
type Page struct {
	Page  int
	Limit int
}

// Clamp applies the defaults and the 1..100 limit cap.
func (p Page) Clamp() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the row offset for the clamped page.
func (p Page) Offset() int {
	c := p.Clamp()
	return (c.Page - 1) * c.Limit
}

// ProjectFilter narrows project lists. All fields are optional; tenant
// scoping is always applied on top.
type ProjectFilter struct {
	Status    *models.ProjectStatus
	ManagerID *uuid.UUID
	IDs       []uuid.UUID
	Page      Page
}

// TeamFilter narrows team lists.
type TeamFilter struct {
	MemberID  *uuid.UUID
	ManagerID *uuid.UUID
	ProjectID *uuid.UUID
	Page      Page
}

// TaskFilter narrows task lists and counts.
type TaskFilter struct {
	ProjectID  *uuid.UUID
	TeamID     *uuid.UUID
	TeamIDs    []uuid.UUID
	AssigneeID *uuid.UUID
	Status     *models.TaskStatus
	NotStatus  *models.TaskStatus
	DueBefore  *time.Time
	DueAfter   *time.Time
	OrderByDue bool
	Page       Page
}

// ReportFilter narrows report lists.
type ReportFilter struct {
	TeamID    *uuid.UUID
	TeamIDs   []uuid.UUID
	ProjectID *uuid.UUID
	Page      Page
}

// Store is the document-store contract the core depends on. Implementations
// must enforce the two uniqueness constraints (global account email, team
// and account name per tenant) and surface violations as apperr.ErrConflict.
type Store interface {
	// Identity. These run before a tenant scope exists and are the only
	// reads not taking a tenant id.
	CreateAccount(ctx context.Context, acc *models.Account) error
	AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountByVerifyToken(ctx context.Context, token string, now time.Time) (*models.Account, error)
	AccountByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error)
	UpdateAccount(ctx context.Context, acc *models.Account) error

	// Tenant-scoped accounts.
	AccountInTenant(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, tenantID uuid.UUID, page Page) ([]models.Account, int64, error)
	CountAccounts(ctx context.Context, tenantID uuid.UUID) (int64, error)
	DeleteAccount(ctx context.Context, tenantID, id uuid.UUID) error

	// Tenants.
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	TenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	TenantByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Tenant, error)

	// Projects.
	CreateProject(ctx context.Context, project *models.Project) error
	ProjectByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, tenantID, id uuid.UUID) error
	ListProjects(ctx context.Context, tenantID uuid.UUID, f ProjectFilter) ([]models.Project, int64, error)
	CountProjects(ctx context.Context, tenantID uuid.UUID, status *models.ProjectStatus) (int64, error)

	// Teams and membership.
	CreateTeam(ctx context.Context, team *models.Team, memberIDs []uuid.UUID) error
	TeamByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context, tenantID uuid.UUID, f TeamFilter) ([]models.Team, int64, error)
	CountTeams(ctx context.Context, tenantID uuid.UUID) (int64, error)
	TeamMemberIDs(ctx context.Context, tenantID, teamID uuid.UUID) ([]uuid.UUID, error)
	TeamIDsForMember(ctx context.Context, tenantID, accountID uuid.UUID) ([]uuid.UUID, error)
	AddTeamMember(ctx context.Context, tenantID, teamID, accountID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, tenantID, teamID, accountID uuid.UUID) error
	LinkTeamToProject(ctx context.Context, tenantID, projectID, teamID uuid.UUID) error
	UnlinkTeamsFromProjects(ctx context.Context, tenantID uuid.UUID, teamIDs []uuid.UUID) error
	DeleteTeamsByProject(ctx context.Context, tenantID, projectID uuid.UUID) error

	// Tasks.
	CreateTask(ctx context.Context, task *models.Task) error
	TaskByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error)
	TaskForAssignee(ctx context.Context, tenantID, assigneeID, id uuid.UUID) (*models.Task, error)
	TaskForManager(ctx context.Context, tenantID, managerID, id uuid.UUID) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, tenantID uuid.UUID, f TaskFilter) ([]models.Task, int64, error)
	CountTasks(ctx context.Context, tenantID uuid.UUID, f TaskFilter) (int64, error)
	TasksByProjects(ctx context.Context, tenantID uuid.UUID, projectIDs []uuid.UUID) (map[uuid.UUID][]models.Task, error)
	DeleteTasksByAssignee(ctx context.Context, tenantID, assigneeID uuid.UUID) error
	DeleteTasksByAssigneeInTeam(ctx context.Context, tenantID, assigneeID, teamID uuid.UUID) error
	DeleteTasksByProject(ctx context.Context, tenantID, projectID uuid.UUID) error
	// CompleteTasksByProject flips every open task under the project to
	// completed. It touches only status and updated_at: stored progress and
	// completed_at stay as they were, and reads compensate through the
	// effective-progress override.
	CompleteTasksByProject(ctx context.Context, tenantID, projectID uuid.UUID, now time.Time) error

	// Reports.
	CreateReport(ctx context.Context, report *models.Report) error
	ReportByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, tenantID uuid.UUID, f ReportFilter) ([]models.Report, int64, error)
	DeleteReport(ctx context.Context, tenantID, id uuid.UUID) error

	// Transact runs fn against a store view whose writes commit atomically.
	// Cascades run inside it so a mid-chain failure leaves nothing applied.
	Transact(ctx context.Context, fn func(Store) error) error
}
