package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

func TestPageClamp(t *testing.T) {
	tests := []struct {
		name       string
		in         Page
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", Page{}, 1, 20, 0},
		{"negative page", Page{Page: -3, Limit: 10}, 1, 10, 0},
		{"limit capped", Page{Page: 2, Limit: 500}, 2, 100, 100},
		{"plain", Page{Page: 3, Limit: 25}, 3, 25, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, tt.in.Offset())
		})
	}
}

func TestEmailUniqueAcrossTenants(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tenantA, tenantB := uuid.New(), uuid.New()

	a := models.Account{Name: "Ada", Email: "ada@example.com", Role: models.RoleMember, TenantID: &tenantA}
	require.NoError(t, m.CreateAccount(ctx, &a))

	b := models.Account{Name: "Other Ada", Email: "ADA@example.com", Role: models.RoleMember, TenantID: &tenantB}
	assert.ErrorIs(t, m.CreateAccount(ctx, &b), apperr.ErrConflict)
}

func TestTeamNameUniquePerTenantOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tenantA, tenantB := uuid.New(), uuid.New()

	require.NoError(t, m.CreateTeam(ctx, &models.Team{Name: "Core", TenantID: tenantA, ManagerID: uuid.New()}, nil))
	assert.ErrorIs(t,
		m.CreateTeam(ctx, &models.Team{Name: "Core", TenantID: tenantA, ManagerID: uuid.New()}, nil),
		apperr.ErrConflict)
	assert.NoError(t,
		m.CreateTeam(ctx, &models.Team{Name: "Core", TenantID: tenantB, ManagerID: uuid.New()}, nil))
}

func TestReadsAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tenantA, tenantB := uuid.New(), uuid.New()

	project := models.Project{Name: "Rollout", Status: models.ProjectActive, TenantID: tenantA, ManagerID: uuid.New()}
	require.NoError(t, m.CreateProject(ctx, &project))
	task := models.Task{Title: "t", TenantID: tenantA, ProjectID: project.ID, TeamID: uuid.New(),
		AssigneeID: uuid.New(), CreatorID: uuid.New(), Status: models.TaskPending}
	require.NoError(t, m.CreateTask(ctx, &task))

	_, err := m.ProjectByID(ctx, tenantB, project.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = m.TaskByID(ctx, tenantB, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	tasks, total, err := m.ListTasks(ctx, tenantB, TaskFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)
}

func TestListTasksPagination(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tenant := uuid.New()
	project := uuid.New()

	for i := 0; i < 5; i++ {
		task := models.Task{Title: fmt.Sprintf("task %d", i), TenantID: tenant, ProjectID: project,
			TeamID: uuid.New(), AssigneeID: uuid.New(), CreatorID: uuid.New(), Status: models.TaskPending}
		require.NoError(t, m.CreateTask(ctx, &task))
	}

	tasks, total, err := m.ListTasks(ctx, tenant, TaskFilter{Page: Page{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, tasks, 2)
	// newest first
	assert.Equal(t, "task 2", tasks[0].Title)
	assert.Equal(t, "task 1", tasks[1].Title)
}

func TestTransactRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	tenant := uuid.New()
	project := models.Project{Name: "Rollout", Status: models.ProjectActive, TenantID: tenant, ManagerID: uuid.New()}
	require.NoError(t, m.CreateProject(ctx, &project))

	err := m.Transact(ctx, func(tx Store) error {
		if err := tx.DeleteProject(ctx, tenant, project.ID); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, err = m.ProjectByID(ctx, tenant, project.ID)
	assert.NoError(t, err)
}
