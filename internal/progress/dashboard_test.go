package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/tenancy"
)

type fixture struct {
	store    *store.Memory
	tenantID uuid.UUID
	ownerID  uuid.UUID
	memberID uuid.UUID
	project  models.Project
}

func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	owner := models.Account{Name: "Ada", Email: "ada@example.com", Role: models.RoleOwner}
	require.NoError(t, s.CreateAccount(ctx, &owner))

	tenant := models.Tenant{Name: "Acme", OwnerID: owner.ID}
	require.NoError(t, s.CreateTenant(ctx, &tenant))
	owner.TenantID = &tenant.ID
	require.NoError(t, s.UpdateAccount(ctx, &owner))

	member := models.Account{Name: "Max", Email: "max@example.com", Role: models.RoleMember, TenantID: &tenant.ID}
	require.NoError(t, s.CreateAccount(ctx, &member))

	project := models.Project{Name: "Rollout", Status: models.ProjectActive, TenantID: tenant.ID, ManagerID: owner.ID}
	require.NoError(t, s.CreateProject(ctx, &project))

	team := models.Team{Name: "Core", TenantID: tenant.ID, ManagerID: owner.ID}
	require.NoError(t, s.CreateTeam(ctx, &team, []uuid.UUID{member.ID}))

	soon := time.Now().Add(48 * time.Hour)
	tasks := []models.Task{
		{Title: "done", Status: models.TaskCompleted, Progress: 100, EstimatedHours: 10},
		{Title: "half", Status: models.TaskInProgress, Progress: 50, EstimatedHours: 30, DueDate: &soon},
	}
	for i := range tasks {
		tasks[i].TenantID = tenant.ID
		tasks[i].ProjectID = project.ID
		tasks[i].TeamID = team.ID
		tasks[i].AssigneeID = member.ID
		tasks[i].CreatorID = owner.ID
		require.NoError(t, s.CreateTask(ctx, &tasks[i]))
	}

	return fixture{store: s, tenantID: tenant.ID, ownerID: owner.ID, memberID: member.ID, project: project}
}

func TestTrackAttachesRollups(t *testing.T) {
	f := seed(t)
	svc := NewService(f.store)
	p := tenancy.Principal{AccountID: f.ownerID, TenantID: f.tenantID, Role: models.RoleOwner}

	tracked, total, err := svc.Track(context.Background(), p, store.ProjectFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, tracked, 1)
	assert.Equal(t, f.project.ID, tracked[0].Project.ID)
	assert.Equal(t, 2, tracked[0].Rollup.TotalTasks)
	assert.Equal(t, 63, tracked[0].Rollup.ProgressPercent)
}

func TestCompanyDashboard(t *testing.T) {
	f := seed(t)
	svc := NewService(f.store)
	p := tenancy.Principal{AccountID: f.ownerID, TenantID: f.tenantID, Role: models.RoleOwner}

	d, err := svc.Company(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, int64(2), d.Accounts)
	assert.Equal(t, int64(1), d.Teams)
	assert.Equal(t, int64(1), d.Projects)
	assert.Equal(t, int64(1), d.ActiveProjects)
	assert.Equal(t, int64(2), d.Tasks)
	assert.Equal(t, int64(1), d.CompletedTasks)
	assert.Equal(t, int64(0), d.OverdueTasks)
	require.Len(t, d.LatestProjects, 1)
	require.Len(t, d.DueSoonTasks, 1)
	assert.Equal(t, "half", d.DueSoonTasks[0].Title)
}

func TestMemberDashboard(t *testing.T) {
	f := seed(t)
	svc := NewService(f.store)
	p := tenancy.Principal{AccountID: f.memberID, TenantID: f.tenantID, Role: models.RoleMember}

	d, err := svc.Member(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.Teams)
	assert.Equal(t, int64(2), d.Tasks)
	assert.Equal(t, int64(1), d.CompletedTasks)
	require.Len(t, d.DueSoonTasks, 1)
	assert.Len(t, d.RecentTasks, 2)
}

func TestDashboardUnknownRole(t *testing.T) {
	f := seed(t)
	svc := NewService(f.store)
	p := tenancy.Principal{AccountID: f.ownerID, TenantID: f.tenantID, Role: models.Role("intern")}

	_, err := svc.Company(context.Background(), p)
	assert.Error(t, err)
}
