package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/taskhive/internal/apperr"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/taskflow"
)

// taskScope selects whose tasks a list route returns.
type taskScope int

const (
	taskScopeTenant taskScope = iota
	taskScopeManager
	taskScopeAssignee
)

// assertProjectOpen is the closed-project guard: completed projects reject
// task mutations.
func assertProjectOpen(ctx context.Context, s store.Store, tenantID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.ProjectByID(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if project.IsClosed() {
		return nil, fmt.Errorf("%w: project is completed", apperr.ErrValidation)
	}
	return project, nil
}

type createTaskRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	ProjectID      uuid.UUID  `json:"project_id" binding:"required"`
	TeamID         uuid.UUID  `json:"team_id" binding:"required"`
	AssigneeID     uuid.UUID  `json:"assignee_id" binding:"required"`
	Priority       string     `json:"priority"`
	EstimatedHours float64    `json:"estimated_hours"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
}

// handleCreateTask creates a pending task. The assignee must be on the
// team, and the project must still be open.
func handleCreateTask(s store.Store, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		var req createTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "title, project_id, team_id and assignee_id are required")
			return
		}

		priority := models.PriorityMedium
		if req.Priority != "" {
			parsed, valid := models.ParseTaskPriority(req.Priority)
			if !valid {
				httputil.Fail(c, http.StatusBadRequest, "priority must be low, medium or high")
				return
			}
			priority = parsed
		}
		if req.EstimatedHours < 0 {
			httputil.Fail(c, http.StatusBadRequest, "estimated_hours must not be negative")
			return
		}

		if _, err := assertProjectOpen(c.Request.Context(), s, p.TenantID, req.ProjectID); err != nil {
			httputil.FromError(c, err)
			return
		}
		team, err := s.TeamByID(c.Request.Context(), p.TenantID, req.TeamID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if err := p.AssertOwnership(team.TenantID, team.ManagerID); err != nil {
			httputil.FromError(c, err)
			return
		}
		onTeam := false
		for _, m := range team.Members {
			if m.ID == req.AssigneeID {
				onTeam = true
				break
			}
		}
		if !onTeam {
			httputil.Fail(c, http.StatusBadRequest, "assignee is not on the team")
			return
		}

		task := models.Task{
			Title:          req.Title,
			Description:    req.Description,
			ProjectID:      req.ProjectID,
			TeamID:         req.TeamID,
			AssigneeID:     req.AssigneeID,
			CreatorID:      p.AccountID,
			TenantID:       p.TenantID,
			Status:         models.TaskPending,
			Priority:       priority,
			EstimatedHours: req.EstimatedHours,
			StartDate:      req.StartDate,
			DueDate:        req.DueDate,
		}
		if err := s.CreateTask(c.Request.Context(), &task); err != nil {
			httputil.FromError(c, err)
			return
		}

		if err := notifier.Publish(notify.Event{
			Type:       notify.EventTaskAssigned,
			TenantID:   p.TenantID,
			AccountID:  task.AssigneeID,
			Subject:    task.Title,
			OccurredAt: time.Now(),
		}); err != nil {
			logrus.WithError(err).Warn("failed to publish task assignment")
		}
		httputil.Created(c, "task created", task)
	}
}

type updateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	AssigneeID     *uuid.UUID `json:"assignee_id"`
	Priority       *string    `json:"priority"`
	EstimatedHours *float64   `json:"estimated_hours"`
	Progress       *int       `json:"progress"`
	Status         *string    `json:"status"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
}

// handleUpdateTask lets the managing manager edit a task. Status changes go
// through the state machine; a progress edit applies before the status
// transition so "progress=100 + completed" behaves like completing.
func handleUpdateTask(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req updateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "invalid task payload")
			return
		}

		task, err := s.TaskForManager(c.Request.Context(), p.TenantID, p.AccountID, id)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if _, err := assertProjectOpen(c.Request.Context(), s, p.TenantID, task.ProjectID); err != nil {
			httputil.FromError(c, err)
			return
		}

		if req.Title != nil {
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.AssigneeID != nil {
			team, err := s.TeamByID(c.Request.Context(), p.TenantID, task.TeamID)
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			onTeam := false
			for _, m := range team.Members {
				if m.ID == *req.AssigneeID {
					onTeam = true
					break
				}
			}
			if !onTeam {
				httputil.Fail(c, http.StatusBadRequest, "assignee is not on the team")
				return
			}
			task.AssigneeID = *req.AssigneeID
		}
		if req.Priority != nil {
			priority, valid := models.ParseTaskPriority(*req.Priority)
			if !valid {
				httputil.Fail(c, http.StatusBadRequest, "priority must be low, medium or high")
				return
			}
			task.Priority = priority
		}
		if req.EstimatedHours != nil {
			if *req.EstimatedHours < 0 {
				httputil.Fail(c, http.StatusBadRequest, "estimated_hours must not be negative")
				return
			}
			task.EstimatedHours = *req.EstimatedHours
		}
		if req.Progress != nil {
			if *req.Progress < 0 || *req.Progress > 100 {
				httputil.Fail(c, http.StatusBadRequest, "progress must be between 0 and 100")
				return
			}
			task.Progress = *req.Progress
		}
		if req.StartDate != nil {
			task.StartDate = req.StartDate
		}
		if req.DueDate != nil {
			task.DueDate = req.DueDate
		}
		if req.Status != nil {
			status, valid := models.ParseTaskStatus(*req.Status)
			if !valid {
				httputil.FromError(c, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, *req.Status))
				return
			}
			if err := taskflow.ApplyStatus(task, status, time.Now()); err != nil {
				httputil.FromError(c, err)
				return
			}
		}

		if err := s.UpdateTask(c.Request.Context(), task); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "task updated", task)
	}
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// handleSetTaskStatus lets an assignee move their own task through the
// state machine.
func handleSetTaskStatus(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req setStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "status is required")
			return
		}
		status, valid := models.ParseTaskStatus(req.Status)
		if !valid {
			httputil.FromError(c, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, req.Status))
			return
		}

		task, err := s.TaskForAssignee(c.Request.Context(), p.TenantID, p.AccountID, id)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if _, err := assertProjectOpen(c.Request.Context(), s, p.TenantID, task.ProjectID); err != nil {
			httputil.FromError(c, err)
			return
		}
		if err := taskflow.ApplyStatus(task, status, time.Now()); err != nil {
			httputil.FromError(c, err)
			return
		}
		if err := s.UpdateTask(c.Request.Context(), task); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "status updated", task)
	}
}

// handleListTasks lists tasks at the given scope with the common filter
// surface: status, overdue=true, due_soon=true.
func handleListTasks(s store.Store, scope taskScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}

		f := store.TaskFilter{Page: pageFromQuery(c)}
		switch scope {
		case taskScopeAssignee:
			f.AssigneeID = &p.AccountID
		case taskScopeManager:
			teamIDs, err := teamIDsManagedBy(c.Request.Context(), s, p.TenantID, p.AccountID)
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			if len(teamIDs) == 0 {
				httputil.OK(c, "", paged([]models.Task{}, 0, f.Page))
				return
			}
			f.TeamIDs = teamIDs
		case taskScopeTenant:
			// tenant-wide; the store scopes by tenant id
		}

		if raw := c.Query("status"); raw != "" {
			status, valid := models.ParseTaskStatus(raw)
			if !valid {
				httputil.FromError(c, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, raw))
				return
			}
			f.Status = &status
		}
		now := time.Now()
		done := models.TaskCompleted
		if c.Query("overdue") == "true" {
			f.NotStatus = &done
			f.DueBefore = &now
			f.OrderByDue = true
		}
		if c.Query("due_soon") == "true" {
			window, err := p.DueSoonWindow()
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			horizon := now.Add(window)
			f.NotStatus = &done
			f.DueAfter = &now
			f.DueBefore = &horizon
			f.OrderByDue = true
		}

		tasks, total, err := s.ListTasks(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(tasks, total, f.Page))
	}
}

func teamIDsManagedBy(ctx context.Context, s store.Store, tenantID, managerID uuid.UUID) ([]uuid.UUID, error) {
	teams, _, err := s.ListTeams(ctx, tenantID, store.TeamFilter{
		ManagerID: &managerID,
		Page:      store.Page{Page: 1, Limit: 100},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
