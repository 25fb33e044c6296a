// Package taskflow keeps a task's status, progress, and timestamps mutually
// consistent. ApplyStatus runs on every status write, not only on creation,
// so a task can never carry a stale derived field after an explicit write.
//
// Reopening a completed task is allowed: any status may be written over
// "completed", and the derived fields are recomputed so the record stays
// consistent (completedAt cleared, progress reset per the target state).
package taskflow

import (
	"fmt"
	"time"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/models"
)

// ApplyStatus writes status to the task and recomputes the derived fields.
// now is injected so callers and tests control the clock.
func ApplyStatus(task *models.Task, status models.TaskStatus, now time.Time) error {
	switch status {
	case models.TaskPending:
		task.Progress = 0
		task.CompletedAt = nil

	case models.TaskInProgress:
		if task.StartDate == nil {
			task.StartDate = &now
		}
		// Guarantee visible movement the moment work starts.
		if task.Progress == 0 {
			task.Progress = 1
		}
		task.CompletedAt = nil

	case models.TaskCompleted:
		task.Progress = 100
		if task.StartDate == nil {
			task.StartDate = &now
		}
		// Idempotent: re-saving a completed task keeps the original stamp.
		if task.CompletedAt == nil {
			task.CompletedAt = &now
		}

	case models.TaskBlocked:
		if task.StartDate == nil && task.Progress > 0 {
			task.StartDate = &now
		}
		task.CompletedAt = nil

	default:
		return fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, status)
	}

	task.Status = status
	return nil
}
