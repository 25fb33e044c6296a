package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

// Memory is an in-process Store used by tests. It enforces the same
// uniqueness rules and error mapping as the postgres implementation.
type Memory struct {
	mu sync.Mutex

	accounts map[uuid.UUID]models.Account
	tenants  map[uuid.UUID]models.Tenant
	projects map[uuid.UUID]models.Project
	teams    map[uuid.UUID]models.Team
	tasks    map[uuid.UUID]models.Task
	reports  map[uuid.UUID]models.Report

	teamMembers  map[uuid.UUID]map[uuid.UUID]bool // team id -> account ids
	projectTeams map[uuid.UUID]map[uuid.UUID]bool // project id -> team ids

	seq     map[uuid.UUID]int
	nextSeq int
	inTx    bool
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     map[uuid.UUID]models.Account{},
		tenants:      map[uuid.UUID]models.Tenant{},
		projects:     map[uuid.UUID]models.Project{},
		teams:        map[uuid.UUID]models.Team{},
		tasks:        map[uuid.UUID]models.Task{},
		reports:      map[uuid.UUID]models.Report{},
		teamMembers:  map[uuid.UUID]map[uuid.UUID]bool{},
		projectTeams: map[uuid.UUID]map[uuid.UUID]bool{},
		seq:          map[uuid.UUID]int{},
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneSets(src map[uuid.UUID]map[uuid.UUID]bool) map[uuid.UUID]map[uuid.UUID]bool {
	dst := make(map[uuid.UUID]map[uuid.UUID]bool, len(src))
	for k, set := range src {
		dst[k] = cloneMap(set)
	}
	return dst
}

func (m *Memory) snapshot() *Memory {
	return &Memory{
		accounts:     cloneMap(m.accounts),
		tenants:      cloneMap(m.tenants),
		projects:     cloneMap(m.projects),
		teams:        cloneMap(m.teams),
		tasks:        cloneMap(m.tasks),
		reports:      cloneMap(m.reports),
		teamMembers:  cloneSets(m.teamMembers),
		projectTeams: cloneSets(m.projectTeams),
		seq:          cloneMap(m.seq),
		nextSeq:      m.nextSeq,
		inTx:         true,
	}
}

// Transact runs fn against a snapshot and publishes it only on success,
// so a failing cascade leaves the store untouched.
func (m *Memory) Transact(ctx context.Context, fn func(Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	tx := m.snapshot()
	m.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	m.accounts = tx.accounts
	m.tenants = tx.tenants
	m.projects = tx.projects
	m.teams = tx.teams
	m.tasks = tx.tasks
	m.reports = tx.reports
	m.teamMembers = tx.teamMembers
	m.projectTeams = tx.projectTeams
	m.seq = tx.seq
	m.nextSeq = tx.nextSeq
	m.mu.Unlock()
	return nil
}

func (m *Memory) track(id uuid.UUID) {
	m.nextSeq++
	m.seq[id] = m.nextSeq
}

func (m *Memory) sortByCreation(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return m.seq[ids[i]] > m.seq[ids[j]] })
}

func paginate[T any](items []T, page Page) []T {
	page = page.Clamp()
	off := page.Offset()
	if off >= len(items) {
		return nil
	}
	end := off + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}

// --- identity ---

func (m *Memory) CreateAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, acc.Email) {
			return apperr.ErrConflict
		}
		if acc.TenantID != nil && a.TenantID != nil && *a.TenantID == *acc.TenantID && a.Name == acc.Name {
			return apperr.ErrConflict
		}
	}
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	m.accounts[acc.ID] = *acc
	m.track(acc.ID)
	return nil
}

func (m *Memory) AccountByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &acc, nil
}

func (m *Memory) AccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			acc := a
			return &acc, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) AccountByVerifyToken(_ context.Context, token string, now time.Time) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.VerifyToken != nil && *a.VerifyToken == token &&
			a.VerifyTokenExpires != nil && a.VerifyTokenExpires.After(now) {
			acc := a
			return &acc, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) AccountByResetToken(_ context.Context, token string, now time.Time) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ResetToken != nil && *a.ResetToken == token &&
			a.ResetTokenExpires != nil && a.ResetTokenExpires.After(now) {
			acc := a
			return &acc, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) UpdateAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[acc.ID]; !ok {
		return apperr.ErrNotFound
	}
	acc.UpdatedAt = time.Now()
	m.accounts[acc.ID] = *acc
	return nil
}

// --- tenant-scoped accounts ---

func (m *Memory) AccountInTenant(_ context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok || acc.TenantID == nil || *acc.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	return &acc, nil
}

func (m *Memory) tenantAccountIDs(tenantID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for id, a := range m.accounts {
		if a.TenantID != nil && *a.TenantID == tenantID {
			ids = append(ids, id)
		}
	}
	m.sortByCreation(ids)
	return ids
}

func (m *Memory) ListAccounts(_ context.Context, tenantID uuid.UUID, page Page) ([]models.Account, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.tenantAccountIDs(tenantID)
	total := int64(len(ids))
	out := make([]models.Account, 0, len(ids))
	for _, id := range paginate(ids, page) {
		out = append(out, m.accounts[id])
	}
	return out, total, nil
}

func (m *Memory) CountAccounts(_ context.Context, tenantID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.tenantAccountIDs(tenantID))), nil
}

func (m *Memory) DeleteAccount(_ context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok || acc.TenantID == nil || *acc.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

// --- tenants ---

func (m *Memory) CreateTenant(_ context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.OwnerID == tenant.OwnerID {
			return apperr.ErrConflict
		}
	}
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}
	m.tenants[tenant.ID] = *tenant
	m.track(tenant.ID)
	return nil
}

func (m *Memory) TenantByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) TenantByOwner(_ context.Context, ownerID uuid.UUID) (*models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.OwnerID == ownerID {
			tenant := t
			return &tenant, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// --- projects ---

func (m *Memory) CreateProject(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	m.projects[project.ID] = *project
	m.track(project.ID)
	return nil
}

func (m *Memory) ProjectByID(_ context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	p.Teams = m.projectTeamsOf(id)
	return &p, nil
}

func (m *Memory) projectTeamsOf(projectID uuid.UUID) []models.Team {
	var teams []models.Team
	var ids []uuid.UUID
	for teamID := range m.projectTeams[projectID] {
		ids = append(ids, teamID)
	}
	m.sortByCreation(ids)
	for _, id := range ids {
		if t, ok := m.teams[id]; ok {
			teams = append(teams, t)
		}
	}
	return teams
}

func (m *Memory) UpdateProject(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; !ok {
		return apperr.ErrNotFound
	}
	project.UpdatedAt = time.Now()
	stored := *project
	stored.Teams = nil
	m.projects[project.ID] = stored
	return nil
}

func (m *Memory) DeleteProject(_ context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	delete(m.projects, id)
	delete(m.projectTeams, id)
	return nil
}

func matchProject(p models.Project, tenantID uuid.UUID, f ProjectFilter) bool {
	if p.TenantID != tenantID {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.ManagerID != nil && p.ManagerID != *f.ManagerID {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if p.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *Memory) ListProjects(_ context.Context, tenantID uuid.UUID, f ProjectFilter) ([]models.Project, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, p := range m.projects {
		if matchProject(p, tenantID, f) {
			ids = append(ids, id)
		}
	}
	m.sortByCreation(ids)
	total := int64(len(ids))
	out := make([]models.Project, 0, len(ids))
	for _, id := range paginate(ids, f.Page) {
		p := m.projects[id]
		p.Teams = m.projectTeamsOf(id)
		out = append(out, p)
	}
	return out, total, nil
}

func (m *Memory) CountProjects(_ context.Context, tenantID uuid.UUID, status *models.ProjectStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.projects {
		if matchProject(p, tenantID, ProjectFilter{Status: status}) {
			n++
		}
	}
	return n, nil
}

// --- teams ---

func (m *Memory) CreateTeam(_ context.Context, team *models.Team, memberIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teams {
		if t.TenantID == team.TenantID && t.Name == team.Name {
			return apperr.ErrConflict
		}
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now()
	}
	stored := *team
	stored.Members = nil
	m.teams[team.ID] = stored
	m.track(team.ID)
	set := map[uuid.UUID]bool{}
	for _, id := range memberIDs {
		set[id] = true
	}
	m.teamMembers[team.ID] = set
	return nil
}

func (m *Memory) teamWithMembers(id uuid.UUID) models.Team {
	t := m.teams[id]
	var memberIDs []uuid.UUID
	for accID := range m.teamMembers[id] {
		memberIDs = append(memberIDs, accID)
	}
	m.sortByCreation(memberIDs)
	for _, accID := range memberIDs {
		if a, ok := m.accounts[accID]; ok {
			t.Members = append(t.Members, a)
		}
	}
	return t
}

func (m *Memory) TeamByID(_ context.Context, tenantID, id uuid.UUID) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok || t.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	full := m.teamWithMembers(id)
	return &full, nil
}

func (m *Memory) ListTeams(_ context.Context, tenantID uuid.UUID, f TeamFilter) ([]models.Team, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, t := range m.teams {
		if t.TenantID != tenantID {
			continue
		}
		if f.ManagerID != nil && t.ManagerID != *f.ManagerID {
			continue
		}
		if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
			continue
		}
		if f.MemberID != nil && !m.teamMembers[id][*f.MemberID] {
			continue
		}
		ids = append(ids, id)
	}
	m.sortByCreation(ids)
	total := int64(len(ids))
	out := make([]models.Team, 0, len(ids))
	for _, id := range paginate(ids, f.Page) {
		out = append(out, m.teamWithMembers(id))
	}
	return out, total, nil
}

func (m *Memory) CountTeams(_ context.Context, tenantID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.teams {
		if t.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) TeamMemberIDs(_ context.Context, tenantID, teamID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok || t.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	var ids []uuid.UUID
	for id := range m.teamMembers[teamID] {
		ids = append(ids, id)
	}
	m.sortByCreation(ids)
	return ids, nil
}

func (m *Memory) TeamIDsForMember(_ context.Context, tenantID, accountID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for teamID, members := range m.teamMembers {
		t, ok := m.teams[teamID]
		if ok && t.TenantID == tenantID && members[accountID] {
			ids = append(ids, teamID)
		}
	}
	m.sortByCreation(ids)
	return ids, nil
}

func (m *Memory) AddTeamMember(_ context.Context, tenantID, teamID, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok || t.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	if m.teamMembers[teamID] == nil {
		m.teamMembers[teamID] = map[uuid.UUID]bool{}
	}
	m.teamMembers[teamID][accountID] = true
	return nil
}

func (m *Memory) RemoveTeamMember(_ context.Context, tenantID, teamID, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok || t.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	delete(m.teamMembers[teamID], accountID)
	return nil
}

func (m *Memory) LinkTeamToProject(_ context.Context, tenantID, projectID, teamID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok || t.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	if m.projectTeams[projectID] == nil {
		m.projectTeams[projectID] = map[uuid.UUID]bool{}
	}
	m.projectTeams[projectID][teamID] = true
	t.ProjectID = &projectID
	m.teams[teamID] = t
	return nil
}

func (m *Memory) UnlinkTeamsFromProjects(_ context.Context, tenantID uuid.UUID, teamIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, teamID := range teamIDs {
		t, ok := m.teams[teamID]
		if !ok || t.TenantID != tenantID {
			continue
		}
		for projectID := range m.projectTeams {
			delete(m.projectTeams[projectID], teamID)
		}
		t.ProjectID = nil
		m.teams[teamID] = t
	}
	return nil
}

func (m *Memory) DeleteTeamsByProject(_ context.Context, tenantID, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.teams {
		if t.TenantID == tenantID && t.ProjectID != nil && *t.ProjectID == projectID {
			delete(m.teams, id)
			delete(m.teamMembers, id)
		}
	}
	return nil
}

// --- tasks ---

func (m *Memory) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	m.tasks[task.ID] = *task
	m.track(task.ID)
	return nil
}

func (m *Memory) TaskByID(_ context.Context, tenantID, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) TaskForAssignee(_ context.Context, tenantID, assigneeID, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.TenantID != tenantID || t.AssigneeID != assigneeID {
		return nil, apperr.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) TaskForManager(_ context.Context, tenantID, managerID, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	p, ok := m.projects[t.ProjectID]
	if !ok || p.ManagerID != managerID {
		return nil, apperr.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) UpdateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return apperr.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	m.tasks[task.ID] = *task
	return nil
}

func matchTask(t models.Task, tenantID uuid.UUID, f TaskFilter) bool {
	if t.TenantID != tenantID {
		return false
	}
	if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
		return false
	}
	if f.TeamID != nil && t.TeamID != *f.TeamID {
		return false
	}
	if len(f.TeamIDs) > 0 {
		found := false
		for _, id := range f.TeamIDs {
			if t.TeamID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AssigneeID != nil && t.AssigneeID != *f.AssigneeID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.NotStatus != nil && t.Status == *f.NotStatus {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueBefore)) {
		return false
	}
	if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
		return false
	}
	return true
}

func (m *Memory) ListTasks(_ context.Context, tenantID uuid.UUID, f TaskFilter) ([]models.Task, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, t := range m.tasks {
		if matchTask(t, tenantID, f) {
			ids = append(ids, id)
		}
	}
	if f.OrderByDue {
		sort.Slice(ids, func(i, j int) bool {
			a, b := m.tasks[ids[i]].DueDate, m.tasks[ids[j]].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
	} else {
		m.sortByCreation(ids)
	}
	total := int64(len(ids))
	out := make([]models.Task, 0, len(ids))
	for _, id := range paginate(ids, f.Page) {
		out = append(out, m.tasks[id])
	}
	return out, total, nil
}

func (m *Memory) CountTasks(_ context.Context, tenantID uuid.UUID, f TaskFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tasks {
		if matchTask(t, tenantID, f) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) TasksByProjects(_ context.Context, tenantID uuid.UUID, projectIDs []uuid.UUID) (map[uuid.UUID][]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range projectIDs {
		want[id] = true
	}
	out := map[uuid.UUID][]models.Task{}
	for _, t := range m.tasks {
		if t.TenantID == tenantID && want[t.ProjectID] {
			out[t.ProjectID] = append(out[t.ProjectID], t)
		}
	}
	return out, nil
}

func (m *Memory) deleteTasksWhere(keep func(models.Task) bool) {
	for id, t := range m.tasks {
		if !keep(t) {
			delete(m.tasks, id)
		}
	}
}

func (m *Memory) DeleteTasksByAssignee(_ context.Context, tenantID, assigneeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteTasksWhere(func(t models.Task) bool {
		return !(t.TenantID == tenantID && t.AssigneeID == assigneeID)
	})
	return nil
}

func (m *Memory) DeleteTasksByAssigneeInTeam(_ context.Context, tenantID, assigneeID, teamID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteTasksWhere(func(t models.Task) bool {
		return !(t.TenantID == tenantID && t.AssigneeID == assigneeID && t.TeamID == teamID)
	})
	return nil
}

func (m *Memory) DeleteTasksByProject(_ context.Context, tenantID, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteTasksWhere(func(t models.Task) bool {
		return !(t.TenantID == tenantID && t.ProjectID == projectID)
	})
	return nil
}

func (m *Memory) CompleteTasksByProject(_ context.Context, tenantID, projectID uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		if t.TenantID == tenantID && t.ProjectID == projectID && t.Status != models.TaskCompleted {
			t.Status = models.TaskCompleted
			t.UpdatedAt = now
			m.tasks[id] = t
		}
	}
	return nil
}

// --- reports ---

func (m *Memory) CreateReport(_ context.Context, report *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	m.reports[report.ID] = *report
	m.track(report.ID)
	return nil
}

func (m *Memory) ReportByID(_ context.Context, tenantID, id uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.TenantID != tenantID {
		return nil, apperr.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListReports(_ context.Context, tenantID uuid.UUID, f ReportFilter) ([]models.Report, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, r := range m.reports {
		if r.TenantID != tenantID {
			continue
		}
		if f.TeamID != nil && r.TeamID != *f.TeamID {
			continue
		}
		if len(f.TeamIDs) > 0 {
			found := false
			for _, teamID := range f.TeamIDs {
				if r.TeamID == teamID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if f.ProjectID != nil && r.ProjectID != *f.ProjectID {
			continue
		}
		ids = append(ids, id)
	}
	m.sortByCreation(ids)
	total := int64(len(ids))
	out := make([]models.Report, 0, len(ids))
	for _, id := range paginate(ids, f.Page) {
		out = append(out, m.reports[id])
	}
	return out, total, nil
}

func (m *Memory) DeleteReport(_ context.Context, tenantID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.TenantID != tenantID {
		return apperr.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}
