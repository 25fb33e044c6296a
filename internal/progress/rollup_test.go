package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/internal/models"
)

func task(status models.TaskStatus, progress int, estHours float64) models.Task {
	return models.Task{Status: status, Progress: progress, EstimatedHours: estHours}
}

func TestComputeEmpty(t *testing.T) {
	r := Compute(nil, time.Now())

	assert.Equal(t, 0, r.TotalTasks)
	assert.Equal(t, 0, r.AvgProgress)
	assert.Equal(t, 0, r.WeightedProgress)
	assert.Equal(t, 0, r.ProgressPercent)
}

func TestComputeWeighted(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		task(models.TaskCompleted, 40, 10), // counts as 100
		task(models.TaskInProgress, 50, 30),
	}

	r := Compute(tasks, now)

	// avg = (100+50)/2 = 75, weighted = (100*10 + 50*30)/40 = 62.5 -> 63
	assert.Equal(t, 2, r.TotalTasks)
	assert.Equal(t, 1, r.CompletedTasks)
	assert.Equal(t, 75, r.AvgProgress)
	assert.Equal(t, 40.0, r.TotalEstimatedHours)
	assert.Equal(t, 63, r.WeightedProgress)
	assert.Equal(t, 63, r.ProgressPercent)
}

func TestComputeHalfRoundsUp(t *testing.T) {
	tasks := []models.Task{
		task(models.TaskInProgress, 100, 3),
		task(models.TaskInProgress, 50, 1),
	}

	r := Compute(tasks, time.Now())

	// weighted = (300+50)/4 = 87.5 -> 88
	assert.Equal(t, 88, r.WeightedProgress)
}

func TestComputeNoEstimatesFallsBackToAverage(t *testing.T) {
	tasks := []models.Task{
		task(models.TaskCompleted, 0, 0),
		task(models.TaskInProgress, 50, 0),
	}

	r := Compute(tasks, time.Now())

	assert.Equal(t, 75, r.AvgProgress)
	assert.Equal(t, 75, r.WeightedProgress)
	assert.Equal(t, 75, r.ProgressPercent)
}

func TestComputeOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)

	open := task(models.TaskInProgress, 10, 0)
	open.DueDate = &past
	done := task(models.TaskCompleted, 100, 0)
	done.DueDate = &past

	r := Compute([]models.Task{open, done}, now)

	// completed tasks never count as overdue
	assert.Equal(t, 1, r.OverdueTasks)
}

func TestEffectiveProgressClamps(t *testing.T) {
	assert.Equal(t, 0, EffectiveProgress(task(models.TaskPending, -5, 0)))
	assert.Equal(t, 100, EffectiveProgress(task(models.TaskInProgress, 250, 0)))
	assert.Equal(t, 100, EffectiveProgress(task(models.TaskCompleted, 10, 0)))
}
