package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the state of a single task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

// ParseTaskStatus validates a raw task status string.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskPending, TaskInProgress, TaskCompleted, TaskBlocked:
		return TaskStatus(s), true
	}
	return "", false
}

// TaskPriority is the triage priority of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ParseTaskPriority validates a raw priority string.
func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), true
	}
	return "", false
}

// Task is a unit of work assigned to a member. Status, progress, and the
// started/completed timestamps are kept consistent by the taskflow rules on
// every status write.
type Task struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title          string       `json:"title" gorm:"not null"`
	Description    string       `json:"description"`
	ProjectID      uuid.UUID    `json:"project_id" gorm:"type:uuid;not null;index"`
	TeamID         uuid.UUID    `json:"team_id" gorm:"type:uuid;not null;index"`
	AssigneeID     uuid.UUID    `json:"assignee_id" gorm:"type:uuid;not null;index"`
	CreatorID      uuid.UUID    `json:"creator_id" gorm:"type:uuid;not null"`
	TenantID       uuid.UUID    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Status         TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Progress       int          `json:"progress" gorm:"not null;default:0"`
	EstimatedHours float64      `json:"estimated_hours" gorm:"not null;default:0"`
	Priority       TaskPriority `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether the task has a due date in the past and is not
// completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskCompleted && t.DueDate != nil && t.DueDate.Before(now)
}
