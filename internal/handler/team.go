package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/cascade"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/store"
)

type createTeamRequest struct {
	Name      string      `json:"name" binding:"required"`
	MemberIDs []uuid.UUID `json:"member_ids"`
	ProjectID *uuid.UUID  `json:"project_id"`
}

// handleCreateTeam creates a team owned by the calling manager. Every
// listed member must already be an account in the tenant.
func handleCreateTeam(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		var req createTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "team name is required")
			return
		}

		for _, id := range req.MemberIDs {
			if _, err := s.AccountInTenant(c.Request.Context(), p.TenantID, id); err != nil {
				httputil.FromError(c, err)
				return
			}
		}

		team := models.Team{
			Name:      req.Name,
			TenantID:  p.TenantID,
			ManagerID: p.AccountID,
		}
		if err := s.CreateTeam(c.Request.Context(), &team, req.MemberIDs); err != nil {
			httputil.FromError(c, err)
			return
		}
		if req.ProjectID != nil {
			if _, err := s.ProjectByID(c.Request.Context(), p.TenantID, *req.ProjectID); err != nil {
				httputil.FromError(c, err)
				return
			}
			if err := s.LinkTeamToProject(c.Request.Context(), p.TenantID, *req.ProjectID, team.ID); err != nil {
				httputil.FromError(c, err)
				return
			}
		}
		httputil.Created(c, "team created", team)
	}
}

func handleListManagedTeams(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		f := store.TeamFilter{ManagerID: &p.AccountID, Page: pageFromQuery(c)}
		teams, total, err := s.ListTeams(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(teams, total, f.Page))
	}
}

func handleListMemberTeams(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		f := store.TeamFilter{MemberID: &p.AccountID, Page: pageFromQuery(c)}
		teams, total, err := s.ListTeams(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(teams, total, f.Page))
	}
}

// handleListMemberProjects lists the projects attached to the caller's
// teams.
func handleListMemberProjects(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		teams, _, err := s.ListTeams(c.Request.Context(), p.TenantID, store.TeamFilter{
			MemberID: &p.AccountID,
			Page:     store.Page{Page: 1, Limit: 100},
		})
		if err != nil {
			httputil.FromError(c, err)
			return
		}

		seen := map[uuid.UUID]bool{}
		var projectIDs []uuid.UUID
		for _, t := range teams {
			if t.ProjectID != nil && !seen[*t.ProjectID] {
				seen[*t.ProjectID] = true
				projectIDs = append(projectIDs, *t.ProjectID)
			}
		}
		if len(projectIDs) == 0 {
			httputil.OK(c, "", paged([]models.Project{}, 0, store.Page{}.Clamp()))
			return
		}

		f := store.ProjectFilter{IDs: projectIDs, Page: pageFromQuery(c)}
		projects, total, err := s.ListProjects(c.Request.Context(), p.TenantID, f)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(projects, total, f.Page))
	}
}

type editTeamMembersRequest struct {
	Add    []uuid.UUID `json:"add"`
	Remove []uuid.UUID `json:"remove"`
}

// handleEditTeamMembers applies membership edits. Removals run first, and
// each removal deletes that member's tasks in this team only.
func handleEditTeamMembers(m *cascade.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		teamID, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req editTeamMembersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "add and remove must be id lists")
			return
		}

		for _, id := range req.Remove {
			if err := m.RemoveTeamMember(c.Request.Context(), p, teamID, id); err != nil {
				httputil.FromError(c, err)
				return
			}
		}
		for _, id := range req.Add {
			if err := m.AddTeamMember(c.Request.Context(), p, teamID, id); err != nil {
				httputil.FromError(c, err)
				return
			}
		}
		httputil.OK(c, "team updated", nil)
	}
}
