package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/internal/cascade"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/progress"
	"github.com/taskhive/taskhive/internal/store"
)

type createProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
}

func handleCreateProject(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		var req createProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "project name is required")
			return
		}

		project := models.Project{
			Name:        req.Name,
			Description: req.Description,
			Status:      models.ProjectActive,
			TenantID:    p.TenantID,
			ManagerID:   p.AccountID,
			StartDate:   req.StartDate,
			DueDate:     req.DueDate,
		}
		if err := s.CreateProject(c.Request.Context(), &project); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.Created(c, "project created", project)
	}
}

// handleListProjects lists tenant projects; on manager routes the list is
// narrowed to projects the caller manages.
func handleListProjects(s store.Store, mineOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}

		f := store.ProjectFilter{Page: pageFromQuery(c)}
		if mineOnly {
			f.ManagerID = &p.AccountID
		}
		if raw := c.Query("status"); raw != "" {
			status, valid := models.ParseProjectStatus(raw)
			if !valid {
				httputil.Fail(c, http.StatusBadRequest, "unknown project status")
				return
			}
			f.Status = &status
		}

		projects, total, err := s.ListProjects(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(projects, total, f.Page))
	}
}

func handleCloseProject(m *cascade.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		project, err := m.CloseProject(c.Request.Context(), p, id)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "project closed", project)
	}
}

func handleDeleteProject(m *cascade.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := m.DeleteProject(c.Request.Context(), p, id); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "project deleted", nil)
	}
}

// handleTracking returns per-project rollups; manager routes narrow to the
// caller's projects.
func handleTracking(svc *progress.Service, mineOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		f := store.ProjectFilter{Page: pageFromQuery(c)}
		if mineOnly {
			f.ManagerID = &p.AccountID
		}
		tracked, total, err := svc.Track(c.Request.Context(), p, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(tracked, total, f.Page))
	}
}

func handleCompanyDashboard(svc *progress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		d, err := svc.Company(c.Request.Context(), p)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", d)
	}
}

func handleMemberDashboard(svc *progress.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		d, err := svc.Member(c.Request.Context(), p)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", d)
	}
}
