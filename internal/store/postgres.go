package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

// Postgres implements Store on top of gorm.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects, tunes the pool and migrates the schema.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Account{},
		&models.Project{},
		&models.Team{},
		&models.Task{},
		&models.Report{},
	); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

// NewPostgres wraps an already-open gorm handle. Used by Transact and tests.
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ErrConflict
	default:
		return err
	}
}

func (p *Postgres) Transact(ctx context.Context, fn func(Store) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Postgres{db: tx})
	})
}

// --- identity ---

func (p *Postgres) CreateAccount(ctx context.Context, acc *models.Account) error {
	return wrap(p.db.WithContext(ctx).Create(acc).Error)
}

func (p *Postgres) AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).First(&acc, "id = ?", id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &acc, nil
}

func (p *Postgres) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).First(&acc, "email = ?", email).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &acc, nil
}

func (p *Postgres) AccountByVerifyToken(ctx context.Context, token string, now time.Time) (*models.Account, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).
		First(&acc, "verify_token = ? AND verify_token_expires > ?", token, now).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &acc, nil
}

func (p *Postgres) AccountByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).
		First(&acc, "reset_token = ? AND reset_token_expires > ?", token, now).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &acc, nil
}

func (p *Postgres) UpdateAccount(ctx context.Context, acc *models.Account) error {
	return wrap(p.db.WithContext(ctx).Save(acc).Error)
}

// --- tenant-scoped accounts ---

func (p *Postgres) AccountInTenant(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).
		First(&acc, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &acc, nil
}

func (p *Postgres) ListAccounts(ctx context.Context, tenantID uuid.UUID, page Page) ([]models.Account, int64, error) {
	page = page.Clamp()
	q := p.db.WithContext(ctx).Model(&models.Account{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err)
	}

	var accounts []models.Account
	err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&accounts).Error
	if err != nil {
		return nil, 0, wrap(err)
	}
	return accounts, total, nil
}

func (p *Postgres) CountAccounts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&models.Account{}).
		Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, wrap(err)
}

func (p *Postgres) DeleteAccount(ctx context.Context, tenantID, id uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Account{})
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// --- tenants ---

func (p *Postgres) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	return wrap(p.db.WithContext(ctx).Create(tenant).Error)
}

func (p *Postgres) TenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := p.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

func (p *Postgres) TenantByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := p.db.WithContext(ctx).First(&t, "owner_id = ?", ownerID).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

// --- projects ---

func (p *Postgres) CreateProject(ctx context.Context, project *models.Project) error {
	return wrap(p.db.WithContext(ctx).Create(project).Error)
}

func (p *Postgres) ProjectByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := p.db.WithContext(ctx).Preload("Teams").
		First(&project, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &project, nil
}

func (p *Postgres) UpdateProject(ctx context.Context, project *models.Project) error {
	return wrap(p.db.WithContext(ctx).Omit("Teams").Save(project).Error)
}

func (p *Postgres) DeleteProject(ctx context.Context, tenantID, id uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Project{})
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return wrap(p.db.WithContext(ctx).
		Exec("DELETE FROM project_teams WHERE project_id = ?", id).Error)
}

func projectQuery(db *gorm.DB, tenantID uuid.UUID, f ProjectFilter) *gorm.DB {
	q := db.Model(&models.Project{}).Where("tenant_id = ?", tenantID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ManagerID != nil {
		q = q.Where("manager_id = ?", *f.ManagerID)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	return q
}

func (p *Postgres) ListProjects(ctx context.Context, tenantID uuid.UUID, f ProjectFilter) ([]models.Project, int64, error) {
	page := f.Page.Clamp()
	q := projectQuery(p.db.WithContext(ctx), tenantID, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err)
	}

	var projects []models.Project
	err := q.Preload("Teams").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&projects).Error
	if err != nil {
		return nil, 0, wrap(err)
	}
	return projects, total, nil
}

func (p *Postgres) CountProjects(ctx context.Context, tenantID uuid.UUID, status *models.ProjectStatus) (int64, error) {
	var n int64
	err := projectQuery(p.db.WithContext(ctx), tenantID, ProjectFilter{Status: status}).Count(&n).Error
	return n, wrap(err)
}

// --- teams ---

func (p *Postgres) CreateTeam(ctx context.Context, team *models.Team, memberIDs []uuid.UUID) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(team).Error; err != nil {
			return wrap(err)
		}
		for _, id := range memberIDs {
			err := tx.Exec(
				"INSERT INTO team_members (team_id, account_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				team.ID, id,
			).Error
			if err != nil {
				return wrap(err)
			}
		}
		return nil
	})
}

func (p *Postgres) TeamByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := p.db.WithContext(ctx).Preload("Members").
		First(&team, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &team, nil
}

func (p *Postgres) ListTeams(ctx context.Context, tenantID uuid.UUID, f TeamFilter) ([]models.Team, int64, error) {
	page := f.Page.Clamp()
	q := p.db.WithContext(ctx).Model(&models.Team{}).Where("teams.tenant_id = ?", tenantID)
	if f.ManagerID != nil {
		q = q.Where("teams.manager_id = ?", *f.ManagerID)
	}
	if f.ProjectID != nil {
		q = q.Where("teams.project_id = ?", *f.ProjectID)
	}
	if f.MemberID != nil {
		q = q.Joins("JOIN team_members tm ON tm.team_id = teams.id").
			Where("tm.account_id = ?", *f.MemberID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err)
	}

	var teams []models.Team
	err := q.Preload("Members").Order("teams.created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&teams).Error
	if err != nil {
		return nil, 0, wrap(err)
	}
	return teams, total, nil
}

func (p *Postgres) CountTeams(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&models.Team{}).
		Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, wrap(err)
}

func (p *Postgres) TeamMemberIDs(ctx context.Context, tenantID, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Raw(
		`SELECT tm.account_id FROM team_members tm
		 JOIN teams t ON t.id = tm.team_id
		 WHERE tm.team_id = ? AND t.tenant_id = ?`, teamID, tenantID,
	).Scan(&ids).Error
	return ids, wrap(err)
}

func (p *Postgres) TeamIDsForMember(ctx context.Context, tenantID, accountID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Raw(
		`SELECT tm.team_id FROM team_members tm
		 JOIN teams t ON t.id = tm.team_id
		 WHERE tm.account_id = ? AND t.tenant_id = ?`, accountID, tenantID,
	).Scan(&ids).Error
	return ids, wrap(err)
}

func (p *Postgres) AddTeamMember(ctx context.Context, tenantID, teamID, accountID uuid.UUID) error {
	if _, err := p.TeamByID(ctx, tenantID, teamID); err != nil {
		return err
	}
	return wrap(p.db.WithContext(ctx).Exec(
		"INSERT INTO team_members (team_id, account_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		teamID, accountID,
	).Error)
}

func (p *Postgres) RemoveTeamMember(ctx context.Context, tenantID, teamID, accountID uuid.UUID) error {
	if _, err := p.TeamByID(ctx, tenantID, teamID); err != nil {
		return err
	}
	return wrap(p.db.WithContext(ctx).Exec(
		"DELETE FROM team_members WHERE team_id = ? AND account_id = ?",
		teamID, accountID,
	).Error)
}

func (p *Postgres) LinkTeamToProject(ctx context.Context, tenantID, projectID, teamID uuid.UUID) error {
	if _, err := p.TeamByID(ctx, tenantID, teamID); err != nil {
		return err
	}
	err := p.db.WithContext(ctx).Exec(
		"INSERT INTO project_teams (project_id, team_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		projectID, teamID,
	).Error
	if err != nil {
		return wrap(err)
	}
	return wrap(p.db.WithContext(ctx).Model(&models.Team{}).
		Where("tenant_id = ? AND id = ?", tenantID, teamID).
		Update("project_id", projectID).Error)
}

func (p *Postgres) UnlinkTeamsFromProjects(ctx context.Context, tenantID uuid.UUID, teamIDs []uuid.UUID) error {
	if len(teamIDs) == 0 {
		return nil
	}
	err := p.db.WithContext(ctx).Exec(
		`DELETE FROM project_teams WHERE team_id IN ?
		 AND project_id IN (SELECT id FROM projects WHERE tenant_id = ?)`,
		teamIDs, tenantID,
	).Error
	if err != nil {
		return wrap(err)
	}
	return wrap(p.db.WithContext(ctx).Model(&models.Team{}).
		Where("tenant_id = ? AND id IN ?", tenantID, teamIDs).
		Update("project_id", nil).Error)
}

func (p *Postgres) DeleteTeamsByProject(ctx context.Context, tenantID, projectID uuid.UUID) error {
	err := p.db.WithContext(ctx).Exec(
		`DELETE FROM team_members WHERE team_id IN
		 (SELECT id FROM teams WHERE tenant_id = ? AND project_id = ?)`,
		tenantID, projectID,
	).Error
	if err != nil {
		return wrap(err)
	}
	return wrap(p.db.WithContext(ctx).
		Where("tenant_id = ? AND project_id = ?", tenantID, projectID).
		Delete(&models.Team{}).Error)
}

// --- tasks ---

func (p *Postgres) CreateTask(ctx context.Context, task *models.Task) error {
	return wrap(p.db.WithContext(ctx).Create(task).Error)
}

func (p *Postgres) TaskByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := p.db.WithContext(ctx).
		First(&task, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &task, nil
}

func (p *Postgres) TaskForAssignee(ctx context.Context, tenantID, assigneeID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := p.db.WithContext(ctx).
		First(&task, "tenant_id = ? AND assignee_id = ? AND id = ?", tenantID, assigneeID, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &task, nil
}

func (p *Postgres) TaskForManager(ctx context.Context, tenantID, managerID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := p.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.tenant_id = ? AND projects.manager_id = ? AND tasks.id = ?", tenantID, managerID, id).
		First(&task).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &task, nil
}

func (p *Postgres) UpdateTask(ctx context.Context, task *models.Task) error {
	return wrap(p.db.WithContext(ctx).Save(task).Error)
}

func taskQuery(db *gorm.DB, tenantID uuid.UUID, f TaskFilter) *gorm.DB {
	q := db.Model(&models.Task{}).Where("tenant_id = ?", tenantID)
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.TeamID != nil {
		q = q.Where("team_id = ?", *f.TeamID)
	}
	if len(f.TeamIDs) > 0 {
		q = q.Where("team_id IN ?", f.TeamIDs)
	}
	if f.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *f.AssigneeID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.NotStatus != nil {
		q = q.Where("status <> ?", *f.NotStatus)
	}
	if f.DueBefore != nil {
		q = q.Where("due_date IS NOT NULL AND due_date < ?", *f.DueBefore)
	}
	if f.DueAfter != nil {
		q = q.Where("due_date IS NOT NULL AND due_date >= ?", *f.DueAfter)
	}
	return q
}

func (p *Postgres) ListTasks(ctx context.Context, tenantID uuid.UUID, f TaskFilter) ([]models.Task, int64, error) {
	page := f.Page.Clamp()
	q := taskQuery(p.db.WithContext(ctx), tenantID, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err)
	}

	order := "created_at DESC"
	if f.OrderByDue {
		order = "due_date ASC"
	}
	var tasks []models.Task
	err := q.Order(order).Offset(page.Offset()).Limit(page.Limit).Find(&tasks).Error
	if err != nil {
		return nil, 0, wrap(err)
	}
	return tasks, total, nil
}

func (p *Postgres) CountTasks(ctx context.Context, tenantID uuid.UUID, f TaskFilter) (int64, error) {
	var n int64
	err := taskQuery(p.db.WithContext(ctx), tenantID, f).Count(&n).Error
	return n, wrap(err)
}

func (p *Postgres) TasksByProjects(ctx context.Context, tenantID uuid.UUID, projectIDs []uuid.UUID) (map[uuid.UUID][]models.Task, error) {
	out := make(map[uuid.UUID][]models.Task, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	var tasks []models.Task
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND project_id IN ?", tenantID, projectIDs).
		Find(&tasks).Error
	if err != nil {
		return nil, wrap(err)
	}
	for _, t := range tasks {
		out[t.ProjectID] = append(out[t.ProjectID], t)
	}
	return out, nil
}

func (p *Postgres) DeleteTasksByAssignee(ctx context.Context, tenantID, assigneeID uuid.UUID) error {
	return wrap(p.db.WithContext(ctx).
		Where("tenant_id = ? AND assignee_id = ?", tenantID, assigneeID).
		Delete(&models.Task{}).Error)
}

func (p *Postgres) DeleteTasksByAssigneeInTeam(ctx context.Context, tenantID, assigneeID, teamID uuid.UUID) error {
	return wrap(p.db.WithContext(ctx).
		Where("tenant_id = ? AND assignee_id = ? AND team_id = ?", tenantID, assigneeID, teamID).
		Delete(&models.Task{}).Error)
}

func (p *Postgres) DeleteTasksByProject(ctx context.Context, tenantID, projectID uuid.UUID) error {
	return wrap(p.db.WithContext(ctx).
		Where("tenant_id = ? AND project_id = ?", tenantID, projectID).
		Delete(&models.Task{}).Error)
}

func (p *Postgres) CompleteTasksByProject(ctx context.Context, tenantID, projectID uuid.UUID, now time.Time) error {
	return wrap(p.db.WithContext(ctx).Model(&models.Task{}).
		Where("tenant_id = ? AND project_id = ? AND status <> ?", tenantID, projectID, models.TaskCompleted).
		Updates(map[string]any{
			"status":     models.TaskCompleted,
			"updated_at": now,
		}).Error)
}

// --- reports ---

func (p *Postgres) CreateReport(ctx context.Context, report *models.Report) error {
	return wrap(p.db.WithContext(ctx).Create(report).Error)
}

func (p *Postgres) ReportByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := p.db.WithContext(ctx).
		First(&r, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &r, nil
}

func (p *Postgres) ListReports(ctx context.Context, tenantID uuid.UUID, f ReportFilter) ([]models.Report, int64, error) {
	page := f.Page.Clamp()
	q := p.db.WithContext(ctx).Model(&models.Report{}).Where("tenant_id = ?", tenantID)
	if f.TeamID != nil {
		q = q.Where("team_id = ?", *f.TeamID)
	}
	if len(f.TeamIDs) > 0 {
		q = q.Where("team_id IN ?", f.TeamIDs)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap(err)
	}

	var reports []models.Report
	err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&reports).Error
	if err != nil {
		return nil, 0, wrap(err)
	}
	return reports, total, nil
}

func (p *Postgres) DeleteReport(ctx context.Context, tenantID, id uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Report{})
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
