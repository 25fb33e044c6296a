package taskflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestApplyStatus_Pending(t *testing.T) {
	done := now.Add(-time.Hour)
	task := &models.Task{Status: models.TaskCompleted, Progress: 100, CompletedAt: &done}

	require.NoError(t, ApplyStatus(task, models.TaskPending, now))
	assert.Equal(t, models.TaskPending, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Nil(t, task.CompletedAt)
}

func TestApplyStatus_InProgress(t *testing.T) {
	t.Run("bumps zero progress to one", func(t *testing.T) {
		task := &models.Task{Status: models.TaskPending}
		require.NoError(t, ApplyStatus(task, models.TaskInProgress, now))
		assert.Equal(t, 1, task.Progress)
		require.NotNil(t, task.StartDate)
		assert.Equal(t, now, *task.StartDate)
	})

	t.Run("keeps non-zero progress", func(t *testing.T) {
		task := &models.Task{Status: models.TaskInProgress, Progress: 40}
		require.NoError(t, ApplyStatus(task, models.TaskInProgress, now))
		assert.Equal(t, 40, task.Progress)
	})

	t.Run("keeps an existing start date", func(t *testing.T) {
		started := now.Add(-48 * time.Hour)
		task := &models.Task{Status: models.TaskBlocked, Progress: 10, StartDate: &started}
		require.NoError(t, ApplyStatus(task, models.TaskInProgress, now))
		assert.Equal(t, started, *task.StartDate)
	})

	t.Run("clears completedAt on reopen", func(t *testing.T) {
		done := now.Add(-time.Hour)
		task := &models.Task{Status: models.TaskCompleted, Progress: 100, StartDate: &done, CompletedAt: &done}
		require.NoError(t, ApplyStatus(task, models.TaskInProgress, now))
		assert.Nil(t, task.CompletedAt)
		assert.Equal(t, 100, task.Progress) // non-zero, so untouched
	})
}

func TestApplyStatus_Completed(t *testing.T) {
	task := &models.Task{Status: models.TaskInProgress, Progress: 40}
	require.NoError(t, ApplyStatus(task, models.TaskCompleted, now))
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
	require.NotNil(t, task.StartDate)

	// Re-saving does not bump the completion stamp.
	later := now.Add(2 * time.Hour)
	require.NoError(t, ApplyStatus(task, models.TaskCompleted, later))
	assert.Equal(t, now, *task.CompletedAt)
}

func TestApplyStatus_Blocked(t *testing.T) {
	t.Run("with progress sets start date", func(t *testing.T) {
		task := &models.Task{Status: models.TaskInProgress, Progress: 30}
		require.NoError(t, ApplyStatus(task, models.TaskBlocked, now))
		require.NotNil(t, task.StartDate)
		assert.Equal(t, 30, task.Progress)
	})

	t.Run("without progress leaves start date unset", func(t *testing.T) {
		task := &models.Task{Status: models.TaskPending}
		require.NoError(t, ApplyStatus(task, models.TaskBlocked, now))
		assert.Nil(t, task.StartDate)
	})
}

func TestApplyStatus_InvalidStatus(t *testing.T) {
	task := &models.Task{Status: models.TaskPending}
	err := ApplyStatus(task, models.TaskStatus("archived"), now)
	assert.ErrorIs(t, err, apperr.ErrInvalidStatus)
	assert.Equal(t, models.TaskPending, task.Status)
}
