// Package progress derives per-project completion figures from raw tasks.
// All figures are computed on read; nothing here writes back to storage.
package progress

import (
	"math"
	"time"

	"github.com/taskhive/taskhive/internal/models"
)

// Rollup is the derived progress picture for one set of tasks.
type Rollup struct {
	TotalTasks          int     `json:"total_tasks"`
	CompletedTasks      int     `json:"completed_tasks"`
	OverdueTasks        int     `json:"overdue_tasks"`
	AvgProgress         int     `json:"avg_progress"`
	TotalEstimatedHours float64 `json:"total_estimated_hours"`
	WeightedProgress    int     `json:"weighted_progress"`
	ProgressPercent     int     `json:"progress_percent"`
}

// EffectiveProgress is the progress value a task contributes to rollups.
// A completed task always counts as 100 regardless of its stored progress,
// and stored values are clamped to 0..100.
func EffectiveProgress(t models.Task) int {
	if t.Status == models.TaskCompleted {
		return 100
	}
	switch {
	case t.Progress < 0:
		return 0
	case t.Progress > 100:
		return 100
	default:
		return t.Progress
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

// Compute derives the rollup for a task set. WeightedProgress weights each
// task by its estimated hours and falls back to the plain average when no
// task carries an estimate. ProgressPercent prefers the weighted figure
// whenever estimates exist.
func Compute(tasks []models.Task, now time.Time) Rollup {
	r := Rollup{TotalTasks: len(tasks)}
	if len(tasks) == 0 {
		return r
	}

	var sum, weightedSum float64
	for _, t := range tasks {
		eff := float64(EffectiveProgress(t))
		sum += eff
		weightedSum += eff * t.EstimatedHours
		r.TotalEstimatedHours += t.EstimatedHours
		if t.Status == models.TaskCompleted {
			r.CompletedTasks++
		}
		if t.IsOverdue(now) {
			r.OverdueTasks++
		}
	}

	r.AvgProgress = round(sum / float64(len(tasks)))
	if r.TotalEstimatedHours > 0 {
		r.WeightedProgress = round(weightedSum / r.TotalEstimatedHours)
		r.ProgressPercent = r.WeightedProgress
	} else {
		r.WeightedProgress = r.AvgProgress
		r.ProgressPercent = r.AvgProgress
	}
	return r
}
