package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/blob"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/store"
)

// handleListReports lists every report in the tenant, optionally narrowed
// by team_id or project_id.
func handleListReports(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		f := store.ReportFilter{Page: pageFromQuery(c)}
		if raw := c.Query("team_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httputil.Fail(c, http.StatusBadRequest, "invalid team_id")
				return
			}
			f.TeamID = &id
		}
		if raw := c.Query("project_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httputil.Fail(c, http.StatusBadRequest, "invalid project_id")
				return
			}
			f.ProjectID = &id
		}

		reports, total, err := s.ListReports(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(reports, total, f.Page))
	}
}

// handleListProjectReports lists reports for one of the manager's projects.
func handleListProjectReports(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		projectID, ok := idParam(c, "id")
		if !ok {
			return
		}

		project, err := s.ProjectByID(c.Request.Context(), p.TenantID, projectID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if err := p.AssertOwnership(project.TenantID, project.ManagerID); err != nil {
			httputil.FromError(c, err)
			return
		}

		f := store.ReportFilter{ProjectID: &projectID, Page: pageFromQuery(c)}
		reports, total, err := s.ListReports(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(reports, total, f.Page))
	}
}

// handleListMemberReports lists reports from the caller's teams.
func handleListMemberReports(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}

		teamIDs, err := s.TeamIDsForMember(c.Request.Context(), p.TenantID, p.AccountID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if raw := c.Query("team_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httputil.Fail(c, http.StatusBadRequest, "invalid team_id")
				return
			}
			onTeam := false
			for _, teamID := range teamIDs {
				if teamID == id {
					onTeam = true
					break
				}
			}
			if !onTeam {
				httputil.Fail(c, http.StatusNotFound, "resource not found")
				return
			}
			teamIDs = []uuid.UUID{id}
		}

		page := pageFromQuery(c)
		if len(teamIDs) == 0 {
			httputil.OK(c, "", paged([]models.Report{}, 0, page))
			return
		}
		reports, total, err := s.ListReports(c.Request.Context(), p.TenantID, store.ReportFilter{
			TeamIDs: teamIDs,
			Page:    page,
		})
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(reports, total, page))
	}
}

// handleCreateReport files a report against one of the caller's teams,
// with an optional attachment stored in blob storage. Multipart form:
// title, description, team_id, file.
func handleCreateReport(s store.Store, uploader blob.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}

		title := c.PostForm("title")
		if title == "" {
			httputil.Fail(c, http.StatusBadRequest, "title is required")
			return
		}
		teamID, err := uuid.Parse(c.PostForm("team_id"))
		if err != nil {
			httputil.Fail(c, http.StatusBadRequest, "team_id is required")
			return
		}

		team, err := s.TeamByID(c.Request.Context(), p.TenantID, teamID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		onTeam := team.ManagerID == p.AccountID
		for _, m := range team.Members {
			if m.ID == p.AccountID {
				onTeam = true
				break
			}
		}
		if !onTeam {
			httputil.Fail(c, http.StatusNotFound, "resource not found")
			return
		}
		if team.ProjectID == nil {
			httputil.Fail(c, http.StatusBadRequest, "team is not attached to a project")
			return
		}

		report := models.Report{
			Title:       title,
			Description: c.PostForm("description"),
			CreatorID:   p.AccountID,
			TeamID:      teamID,
			ProjectID:   *team.ProjectID,
			TenantID:    p.TenantID,
		}

		if file, err := c.FormFile("file"); err == nil {
			if uploader == nil {
				httputil.Fail(c, http.StatusServiceUnavailable, "file uploads are not configured")
				return
			}
			if file.Size > maxUploadBytes {
				httputil.Fail(c, http.StatusBadRequest, "file exceeds the 5MB limit")
				return
			}
			src, err := file.Open()
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			contentType := file.Header.Get("Content-Type")
			url, err := uploader.Upload(c.Request.Context(), "reports", contentType, data)
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			report.FileURL = &url
			report.FileType = &contentType
		}

		if err := s.CreateReport(c.Request.Context(), &report); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.Created(c, "report created", report)
	}
}

// handleDeleteReportAsManager removes a report from a team the caller
// manages.
func handleDeleteReportAsManager(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		report, err := s.ReportByID(c.Request.Context(), p.TenantID, id)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		team, err := s.TeamByID(c.Request.Context(), p.TenantID, report.TeamID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if err := p.AssertOwnership(team.TenantID, team.ManagerID); err != nil {
			httputil.FromError(c, err)
			return
		}

		if err := s.DeleteReport(c.Request.Context(), p.TenantID, id); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "report deleted", nil)
	}
}
