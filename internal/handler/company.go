package handler

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/cascade"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/tenancy"
)

// requireTenant resolves the principal and rejects owners that have not
// created their company yet.
func requireTenant(c *gin.Context) (tenancy.Principal, bool) {
	p, ok := middleware.Principal(c)
	if !ok {
		httputil.Fail(c, http.StatusUnauthorized, "authentication required")
		return tenancy.Principal{}, false
	}
	if !p.HasTenant() {
		httputil.Fail(c, http.StatusBadRequest, "create a company first")
		return tenancy.Principal{}, false
	}
	return p, true
}

func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.Fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

type createCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// handleCreateCompany creates the owner's tenant. One company per owner.
func handleCreateCompany(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.Principal(c)
		var req createCompanyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "company name is required")
			return
		}

		tenant := models.Tenant{Name: req.Name, Description: req.Description, OwnerID: p.AccountID}
		if err := s.CreateTenant(c.Request.Context(), &tenant); err != nil {
			httputil.FromError(c, err)
			return
		}

		acc, err := s.AccountByID(c.Request.Context(), p.AccountID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		acc.TenantID = &tenant.ID
		if err := s.UpdateAccount(c.Request.Context(), acc); err != nil {
			httputil.FromError(c, err)
			return
		}

		httputil.Created(c, "company created", tenant)
	}
}

type inviteRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// handleInviteUser creates a manager or member account in the owner's
// company, pending email verification.
func handleInviteUser(s store.Store, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		var req inviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "name, email, password and role are required")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "invalid email address")
			return
		}
		role, valid := models.ParseRole(req.Role)
		if !valid || role == models.RoleOwner {
			httputil.Fail(c, http.StatusBadRequest, "role must be manager or member")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		token, expires, err := auth.NewActionToken(time.Now())
		if err != nil {
			httputil.FromError(c, err)
			return
		}

		acc := models.Account{
			Name:               req.Name,
			Email:              req.Email,
			PasswordHash:       hash,
			Role:               role,
			TenantID:           &p.TenantID,
			VerifyToken:        &token,
			VerifyTokenExpires: &expires,
		}
		if err := s.CreateAccount(c.Request.Context(), &acc); err != nil {
			httputil.FromError(c, err)
			return
		}

		if err := notifier.Publish(notify.Event{
			Type:       notify.EventAccountInvited,
			TenantID:   p.TenantID,
			AccountID:  acc.ID,
			Subject:    acc.Email,
			Token:      token,
			OccurredAt: time.Now(),
		}); err != nil {
			logrus.WithError(err).Warn("failed to publish invite event")
		}
		httputil.Created(c, "user invited", acc)
	}
}

func handleListUsers(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		page := pageFromQuery(c)
		accounts, total, err := s.ListAccounts(c.Request.Context(), p.TenantID, page)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", paged(accounts, total, page))
	}
}

// handlePromoteUser turns a member into a manager.
func handlePromoteUser(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		acc, err := s.AccountInTenant(c.Request.Context(), p.TenantID, id)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if acc.Role != models.RoleMember {
			httputil.Fail(c, http.StatusBadRequest, "only members can be promoted")
			return
		}
		acc.Role = models.RoleManager
		if err := s.UpdateAccount(c.Request.Context(), acc); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "user promoted", acc)
	}
}

func handleDeleteUser(m *cascade.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := m.DeleteAccount(c.Request.Context(), p, id); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "user removed", nil)
	}
}

// handleDeleteReportAsOwner removes any report in the tenant.
func handleDeleteReportAsOwner(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := requireTenant(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := s.DeleteReport(c.Request.Context(), p.TenantID, id); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "report deleted", nil)
	}
}
