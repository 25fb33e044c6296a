package progress

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/tenancy"
)

// Service answers dashboard and tracking queries. It only reads.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// ProjectTracking pairs a project with its derived rollup.
type ProjectTracking struct {
	Project models.Project `json:"project"`
	Rollup  Rollup         `json:"rollup"`
}

// Track lists projects with their rollups. The caller narrows the filter
// to its own visibility (managers pass their own id).
func (s *Service) Track(ctx context.Context, p tenancy.Principal, f store.ProjectFilter) ([]ProjectTracking, int64, error) {
	projects, total, err := s.store.ListProjects(ctx, p.TenantID, f)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(projects))
	for _, proj := range projects {
		ids = append(ids, proj.ID)
	}
	byProject, err := s.store.TasksByProjects(ctx, p.TenantID, ids)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	out := make([]ProjectTracking, 0, len(projects))
	for _, proj := range projects {
		out = append(out, ProjectTracking{
			Project: proj,
			Rollup:  Compute(byProject[proj.ID], now),
		})
	}
	return out, total, nil
}

// CompanyDashboard is the owner's tenant-wide summary.
type CompanyDashboard struct {
	Accounts          int64             `json:"accounts"`
	Teams             int64             `json:"teams"`
	Projects          int64             `json:"projects"`
	ActiveProjects    int64             `json:"active_projects"`
	CompletedProjects int64             `json:"completed_projects"`
	Tasks             int64             `json:"tasks"`
	CompletedTasks    int64             `json:"completed_tasks"`
	OverdueTasks      int64             `json:"overdue_tasks"`
	LatestProjects    []ProjectTracking `json:"latest_projects"`
	DueSoonTasks      []models.Task     `json:"due_soon_tasks"`
}

// Company builds the owner dashboard. The due-soon window depends on the
// caller's role, so a non-owner principal fails before any query runs.
func (s *Service) Company(ctx context.Context, p tenancy.Principal) (*CompanyDashboard, error) {
	window, err := p.DueSoonWindow()
	if err != nil {
		return nil, err
	}
	now := time.Now()

	d := &CompanyDashboard{}
	if d.Accounts, err = s.store.CountAccounts(ctx, p.TenantID); err != nil {
		return nil, err
	}
	if d.Teams, err = s.store.CountTeams(ctx, p.TenantID); err != nil {
		return nil, err
	}
	if d.Projects, err = s.store.CountProjects(ctx, p.TenantID, nil); err != nil {
		return nil, err
	}
	active := models.ProjectActive
	if d.ActiveProjects, err = s.store.CountProjects(ctx, p.TenantID, &active); err != nil {
		return nil, err
	}
	completed := models.ProjectCompleted
	if d.CompletedProjects, err = s.store.CountProjects(ctx, p.TenantID, &completed); err != nil {
		return nil, err
	}
	if d.Tasks, err = s.store.CountTasks(ctx, p.TenantID, store.TaskFilter{}); err != nil {
		return nil, err
	}
	done := models.TaskCompleted
	if d.CompletedTasks, err = s.store.CountTasks(ctx, p.TenantID, store.TaskFilter{Status: &done}); err != nil {
		return nil, err
	}
	if d.OverdueTasks, err = s.store.CountTasks(ctx, p.TenantID, store.TaskFilter{
		NotStatus: &done,
		DueBefore: &now,
	}); err != nil {
		return nil, err
	}

	if d.LatestProjects, _, err = s.Track(ctx, p, store.ProjectFilter{
		Page: store.Page{Page: 1, Limit: 5},
	}); err != nil {
		return nil, err
	}

	horizon := now.Add(window)
	if d.DueSoonTasks, _, err = s.store.ListTasks(ctx, p.TenantID, store.TaskFilter{
		NotStatus:  &done,
		DueAfter:   &now,
		DueBefore:  &horizon,
		OrderByDue: true,
		Page:       store.Page{Page: 1, Limit: 10},
	}); err != nil {
		return nil, err
	}
	return d, nil
}

// MemberDashboard is an assignee's personal summary.
type MemberDashboard struct {
	Teams          int64         `json:"teams"`
	Tasks          int64         `json:"tasks"`
	CompletedTasks int64         `json:"completed_tasks"`
	OverdueTasks   int64         `json:"overdue_tasks"`
	DueSoonTasks   []models.Task `json:"due_soon_tasks"`
	RecentTasks    []models.Task `json:"recent_tasks"`
}

// Member builds the personal dashboard for the calling account.
func (s *Service) Member(ctx context.Context, p tenancy.Principal) (*MemberDashboard, error) {
	window, err := p.DueSoonWindow()
	if err != nil {
		return nil, err
	}
	now := time.Now()

	teamIDs, err := s.store.TeamIDsForMember(ctx, p.TenantID, p.AccountID)
	if err != nil {
		return nil, err
	}

	d := &MemberDashboard{Teams: int64(len(teamIDs))}
	mine := store.TaskFilter{AssigneeID: &p.AccountID}
	if d.Tasks, err = s.store.CountTasks(ctx, p.TenantID, mine); err != nil {
		return nil, err
	}
	done := models.TaskCompleted
	mineDone := mine
	mineDone.Status = &done
	if d.CompletedTasks, err = s.store.CountTasks(ctx, p.TenantID, mineDone); err != nil {
		return nil, err
	}
	mineOverdue := mine
	mineOverdue.NotStatus = &done
	mineOverdue.DueBefore = &now
	if d.OverdueTasks, err = s.store.CountTasks(ctx, p.TenantID, mineOverdue); err != nil {
		return nil, err
	}

	horizon := now.Add(window)
	if d.DueSoonTasks, _, err = s.store.ListTasks(ctx, p.TenantID, store.TaskFilter{
		AssigneeID: &p.AccountID,
		NotStatus:  &done,
		DueAfter:   &now,
		DueBefore:  &horizon,
		OrderByDue: true,
		Page:       store.Page{Page: 1, Limit: 10},
	}); err != nil {
		return nil, err
	}
	if d.RecentTasks, _, err = s.store.ListTasks(ctx, p.TenantID, store.TaskFilter{
		AssigneeID: &p.AccountID,
		Page:       store.Page{Page: 1, Limit: 5},
	}); err != nil {
		return nil, err
	}
	return d, nil
}
