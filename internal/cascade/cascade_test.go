package cascade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/progress"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/tenancy"
)

type world struct {
	store   *store.Memory
	mgr     *Manager
	tenant  models.Tenant
	owner   models.Account
	manager models.Account
	member  models.Account
	project models.Project
	teamA   models.Team
	teamB   models.Team
	taskA   models.Task
	taskB   models.Task
}

func (w *world) ownerPrincipal() tenancy.Principal {
	return tenancy.Principal{AccountID: w.owner.ID, TenantID: w.tenant.ID, Role: models.RoleOwner}
}

func (w *world) managerPrincipal() tenancy.Principal {
	return tenancy.Principal{AccountID: w.manager.ID, TenantID: w.tenant.ID, Role: models.RoleManager}
}

func setup(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	w := &world{store: s, mgr: NewManager(s, nil, notify.Noop{})}

	w.owner = models.Account{Name: "Ada", Email: "ada@example.com", Role: models.RoleOwner}
	require.NoError(t, s.CreateAccount(ctx, &w.owner))
	w.tenant = models.Tenant{Name: "Acme", OwnerID: w.owner.ID}
	require.NoError(t, s.CreateTenant(ctx, &w.tenant))
	w.owner.TenantID = &w.tenant.ID
	require.NoError(t, s.UpdateAccount(ctx, &w.owner))

	w.manager = models.Account{Name: "Mia", Email: "mia@example.com", Role: models.RoleManager, TenantID: &w.tenant.ID}
	require.NoError(t, s.CreateAccount(ctx, &w.manager))
	w.member = models.Account{Name: "Max", Email: "max@example.com", Role: models.RoleMember, TenantID: &w.tenant.ID}
	require.NoError(t, s.CreateAccount(ctx, &w.member))

	w.project = models.Project{Name: "Rollout", Status: models.ProjectActive, TenantID: w.tenant.ID, ManagerID: w.manager.ID}
	require.NoError(t, s.CreateProject(ctx, &w.project))

	w.teamA = models.Team{Name: "Alpha", TenantID: w.tenant.ID, ManagerID: w.manager.ID}
	require.NoError(t, s.CreateTeam(ctx, &w.teamA, []uuid.UUID{w.member.ID}))
	w.teamB = models.Team{Name: "Beta", TenantID: w.tenant.ID, ManagerID: w.manager.ID}
	require.NoError(t, s.CreateTeam(ctx, &w.teamB, []uuid.UUID{w.member.ID}))
	require.NoError(t, s.LinkTeamToProject(ctx, w.tenant.ID, w.project.ID, w.teamA.ID))

	w.taskA = models.Task{Title: "in alpha", TenantID: w.tenant.ID, ProjectID: w.project.ID, TeamID: w.teamA.ID,
		AssigneeID: w.member.ID, CreatorID: w.manager.ID, Status: models.TaskInProgress, Progress: 40}
	require.NoError(t, s.CreateTask(ctx, &w.taskA))
	w.taskB = models.Task{Title: "in beta", TenantID: w.tenant.ID, ProjectID: w.project.ID, TeamID: w.teamB.ID,
		AssigneeID: w.member.ID, CreatorID: w.manager.ID, Status: models.TaskPending}
	require.NoError(t, s.CreateTask(ctx, &w.taskB))

	return w
}

func TestDeleteAccountCascades(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.mgr.DeleteAccount(ctx, w.ownerPrincipal(), w.member.ID))

	_, err := w.store.AccountInTenant(ctx, w.tenant.ID, w.member.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err := w.store.CountTasks(ctx, w.tenant.ID, store.TaskFilter{AssigneeID: &w.member.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	teamIDs, err := w.store.TeamIDsForMember(ctx, w.tenant.ID, w.member.ID)
	require.NoError(t, err)
	assert.Empty(t, teamIDs)

	// the member's teams are pruned from project links, though the teams
	// themselves survive
	project, err := w.store.ProjectByID(ctx, w.tenant.ID, w.project.ID)
	require.NoError(t, err)
	assert.Empty(t, project.Teams)
	team, err := w.store.TeamByID(ctx, w.tenant.ID, w.teamA.ID)
	require.NoError(t, err)
	assert.Nil(t, team.ProjectID)
}

func TestDeleteAccountTwiceReportsNotFound(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.mgr.DeleteAccount(ctx, w.ownerPrincipal(), w.member.ID))
	err := w.mgr.DeleteAccount(ctx, w.ownerPrincipal(), w.member.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAccountRefusesOwner(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	err := w.mgr.DeleteAccount(ctx, w.ownerPrincipal(), w.owner.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// nothing else was touched
	n, err := w.store.CountTasks(ctx, w.tenant.ID, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteManagerUnlinksManagedTeams(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.mgr.DeleteAccount(ctx, w.ownerPrincipal(), w.manager.ID))

	project, err := w.store.ProjectByID(ctx, w.tenant.ID, w.project.ID)
	require.NoError(t, err)
	assert.Empty(t, project.Teams)

	// the teams themselves survive
	_, err = w.store.TeamByID(ctx, w.tenant.ID, w.teamA.ID)
	assert.NoError(t, err)
}

func TestDeleteAccountCrossTenantLooksMissing(t *testing.T) {
	w := setup(t)
	ctx := context.Background()
	stranger := tenancy.Principal{AccountID: uuid.New(), TenantID: uuid.New(), Role: models.RoleOwner}

	err := w.mgr.DeleteAccount(ctx, stranger, w.member.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = w.store.AccountInTenant(ctx, w.tenant.ID, w.member.ID)
	assert.NoError(t, err)
}

func TestCloseProjectCompletesOpenTasks(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	project, err := w.mgr.CloseProject(ctx, w.managerPrincipal(), w.project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, project.Status)

	tasks, _, err := w.store.ListTasks(ctx, w.tenant.ID, store.TaskFilter{ProjectID: &w.project.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, models.TaskCompleted, task.Status)
		// the bulk close skips the per-task derived fields: stored progress
		// stays stale and reads compensate through the effective value
		assert.Nil(t, task.CompletedAt)
		assert.Equal(t, 100, progress.EffectiveProgress(task))
	}

	byTitle := map[string]models.Task{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}
	assert.Equal(t, 40, byTitle["in alpha"].Progress)
	assert.Equal(t, 0, byTitle["in beta"].Progress)
}

func TestCloseProjectTwiceFails(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	_, err := w.mgr.CloseProject(ctx, w.managerPrincipal(), w.project.ID)
	require.NoError(t, err)
	_, err = w.mgr.CloseProject(ctx, w.managerPrincipal(), w.project.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCloseProjectRequiresManagingIt(t *testing.T) {
	w := setup(t)
	ctx := context.Background()
	other := tenancy.Principal{AccountID: uuid.New(), TenantID: w.tenant.ID, Role: models.RoleManager}

	_, err := w.mgr.CloseProject(ctx, other, w.project.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeleteProjectRequiresCompletedForManagers(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	err := w.mgr.DeleteProject(ctx, w.managerPrincipal(), w.project.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestOwnerDeletesProjectRegardlessOfStatus(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	require.Equal(t, models.ProjectActive, w.project.Status)
	require.NoError(t, w.mgr.DeleteProject(ctx, w.ownerPrincipal(), w.project.ID))

	_, err := w.store.ProjectByID(ctx, w.tenant.ID, w.project.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteProjectRemovesTasksAndTeams(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	_, err := w.mgr.CloseProject(ctx, w.managerPrincipal(), w.project.ID)
	require.NoError(t, err)
	require.NoError(t, w.mgr.DeleteProject(ctx, w.managerPrincipal(), w.project.ID))

	_, err = w.store.ProjectByID(ctx, w.tenant.ID, w.project.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err := w.store.CountTasks(ctx, w.tenant.ID, store.TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	// the team attached to the project goes with it
	_, err = w.store.TeamByID(ctx, w.tenant.ID, w.teamA.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// the unattached team survives
	_, err = w.store.TeamByID(ctx, w.tenant.ID, w.teamB.ID)
	assert.NoError(t, err)
}

func TestRemoveTeamMemberDeletesOnlyThatTeamsTasks(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.mgr.RemoveTeamMember(ctx, w.managerPrincipal(), w.teamA.ID, w.member.ID))

	_, err := w.store.TaskByID(ctx, w.tenant.ID, w.taskA.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// the task in the other team is untouched
	_, err = w.store.TaskByID(ctx, w.tenant.ID, w.taskB.ID)
	assert.NoError(t, err)

	teamIDs, err := w.store.TeamIDsForMember(ctx, w.tenant.ID, w.member.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{w.teamB.ID}, teamIDs)
}

func TestAddTeamMemberIsIdempotent(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	require.NoError(t, w.mgr.AddTeamMember(ctx, w.managerPrincipal(), w.teamA.ID, w.member.ID))

	team, err := w.store.TeamByID(ctx, w.tenant.ID, w.teamA.ID)
	require.NoError(t, err)
	assert.Len(t, team.Members, 1)
}

func TestAddTeamMemberRejectsUnknownAccount(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	err := w.mgr.AddTeamMember(ctx, w.managerPrincipal(), w.teamA.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveTeamMemberNeedsTeamManager(t *testing.T) {
	w := setup(t)
	ctx := context.Background()
	other := tenancy.Principal{AccountID: uuid.New(), TenantID: w.tenant.ID, Role: models.RoleManager}

	err := w.mgr.RemoveTeamMember(ctx, other, w.teamA.ID, w.member.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// nothing deleted
	_, err = w.store.TaskByID(ctx, w.tenant.ID, w.taskA.ID)
	assert.NoError(t, err)
}

func TestCloseProjectSurvivesMissingTenant(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	mgr := NewManager(s, nil, notify.Noop{})

	tenantID, managerID := uuid.New(), uuid.New()
	project := models.Project{Name: "Orphan", Status: models.ProjectActive, TenantID: tenantID, ManagerID: managerID}
	require.NoError(t, s.CreateProject(ctx, &project))

	hook := logrustest.NewGlobal()
	defer hook.Reset()

	p := tenancy.Principal{AccountID: managerID, TenantID: tenantID, Role: models.RoleManager}
	closed, err := mgr.CloseProject(ctx, p, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, closed.Status)

	// the skipped notification is logged, not surfaced
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
