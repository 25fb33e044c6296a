// Package handler exposes the HTTP API. Handlers are thin gin closures:
// bind, resolve principal, call into the core, translate the error.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/blob"
	"github.com/taskhive/taskhive/internal/cache"
	"github.com/taskhive/taskhive/internal/cascade"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/progress"
	"github.com/taskhive/taskhive/internal/store"
)

// Deps collects everything the routes need.
type Deps struct {
	Store    store.Store
	Issuer   *auth.TokenIssuer
	Sessions *cache.Sessions
	Cascade  *cascade.Manager
	Progress *progress.Service
	Notifier notify.Notifier
	Uploader blob.Uploader
}

// NewRouter builds the full route tree.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", handleSignup(d.Store, d.Notifier))
		authGroup.GET("/verify/:token", handleVerify(d.Store))
		authGroup.POST("/login", handleLogin(d.Store, d.Issuer, d.Sessions))
		authGroup.POST("/reset", handleRequestReset(d.Store, d.Notifier))
		authGroup.POST("/new-password", handleNewPassword(d.Store, d.Sessions))
	}

	authMW := middleware.NewAuth(d.Issuer, d.Sessions, d.Store)
	authed := r.Group("", authMW.RequireAuth())
	{
		authed.POST("/auth/logout", handleLogout(d.Sessions))
		authed.GET("/me", handleGetProfile(d.Store))
		authed.PUT("/me", handleUpdateProfile(d.Store, d.Uploader))
	}

	company := authed.Group("/company", middleware.RequireRole(models.RoleOwner))
	{
		company.POST("", handleCreateCompany(d.Store))
		company.POST("/users", handleInviteUser(d.Store, d.Notifier))
		company.GET("/users", handleListUsers(d.Store))
		company.PUT("/users/:id/promote", handlePromoteUser(d.Store))
		company.DELETE("/users/:id", handleDeleteUser(d.Cascade))
		company.GET("/dashboard", handleCompanyDashboard(d.Progress))
		company.GET("/tracking", handleTracking(d.Progress, false))
		company.GET("/projects", handleListProjects(d.Store, false))
		company.GET("/tasks", handleListTasks(d.Store, taskScopeTenant))
		company.GET("/reports", handleListReports(d.Store))
		company.DELETE("/projects/:id", handleDeleteProject(d.Cascade))
		company.DELETE("/reports/:id", handleDeleteReportAsOwner(d.Store))
	}

	manager := authed.Group("/manager", middleware.RequireRole(models.RoleManager))
	{
		manager.POST("/projects", handleCreateProject(d.Store))
		manager.GET("/projects", handleListProjects(d.Store, true))
		manager.POST("/projects/:id/close", handleCloseProject(d.Cascade))
		manager.DELETE("/projects/:id", handleDeleteProject(d.Cascade))
		manager.GET("/projects/:id/reports", handleListProjectReports(d.Store))
		manager.POST("/teams", handleCreateTeam(d.Store))
		manager.GET("/teams", handleListManagedTeams(d.Store))
		manager.PUT("/teams/:id/members", handleEditTeamMembers(d.Cascade))
		manager.POST("/tasks", handleCreateTask(d.Store, d.Notifier))
		manager.PUT("/tasks/:id", handleUpdateTask(d.Store))
		manager.GET("/tasks", handleListTasks(d.Store, taskScopeManager))
		manager.GET("/tracking", handleTracking(d.Progress, true))
		manager.DELETE("/reports/:id", handleDeleteReportAsManager(d.Store))
	}

	member := authed.Group("/member", middleware.RequireRole(models.RoleMember, models.RoleManager))
	{
		member.GET("/dashboard", handleMemberDashboard(d.Progress))
		member.GET("/tasks", handleListTasks(d.Store, taskScopeAssignee))
		member.PUT("/tasks/:id/status", handleSetTaskStatus(d.Store))
		member.GET("/teams", handleListMemberTeams(d.Store))
		member.GET("/projects", handleListMemberProjects(d.Store))
		member.GET("/reports", handleListMemberReports(d.Store))
		member.POST("/reports", handleCreateReport(d.Store, d.Uploader))
	}

	return r
}

// pageFromQuery reads page/limit query params; store.Page clamps them.
func pageFromQuery(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return store.Page{Page: page, Limit: limit}.Clamp()
}

func paged(items interface{}, total int64, page store.Page) httputil.PagedData {
	return httputil.PagedData{Items: items, Total: total, Page: page.Page, Limit: page.Limit}
}
