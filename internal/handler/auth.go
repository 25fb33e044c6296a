package handler

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/cache"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/store"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// handleSignup creates an owner account pending email verification.
func handleSignup(s store.Store, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "name, email and password (8+ chars) are required")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "invalid email address")
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
			Role:               models.RoleOwner,
			VerifyToken:        &token,
			VerifyTokenExpires: &expires,
		}
		if err := s.CreateAccount(c.Request.Context(), &acc); err != nil {
			httputil.FromError(c, err)
			return
		}

		if err := notifier.Publish(notify.Event{
			Type:       notify.EventAccountInvited,
			AccountID:  acc.ID,
			Subject:    acc.Email,
			Token:      token,
			OccurredAt: time.Now(),
		}); err != nil {
			logrus.WithError(err).Warn("failed to publish signup event")
		}

		httputil.Created(c, "account created, verification pending", acc)
	}
}

// handleVerify consumes a verification token.
func handleVerify(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := s.AccountByVerifyToken(c.Request.Context(), c.Param("token"), time.Now())
		if err != nil {
			httputil.Fail(c, http.StatusBadRequest, "invalid or expired verification token")
			return
		}

		acc.Verified = true
		acc.VerifyToken = nil
		acc.VerifyTokenExpires = nil
		if err := s.UpdateAccount(c.Request.Context(), acc); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "account verified", nil)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

// handleLogin exchanges credentials for a session token. Credential
// failures are uniform so responses never confirm whether an email exists.
func handleLogin(s store.Store, issuer *auth.TokenIssuer, sessions *cache.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "email and password are required")
			return
		}

		acc, err := s.AccountByEmail(c.Request.Context(), req.Email)
		if err != nil || !auth.CheckPassword(acc.PasswordHash, req.Password) {
			httputil.Fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if !acc.Verified {
			httputil.Fail(c, http.StatusForbidden, "account not verified")
			return
		}

		token, err := issuer.Issue(acc, time.Now())
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		if sessions != nil {
			if err := sessions.Create(c.Request.Context(), token, acc.ID, auth.SessionTTL); err != nil {
				httputil.FromError(c, err)
				return
			}
		}
		httputil.OK(c, "logged in", loginResponse{Token: token, Account: *acc})
	}
}

// handleLogout revokes the presented session token.
func handleLogout(sessions *cache.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions != nil {
			if err := sessions.Revoke(c.Request.Context(), middleware.Token(c)); err != nil {
				httputil.FromError(c, err)
				return
			}
		}
		httputil.OK(c, "logged out", nil)
	}
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

// handleRequestReset issues a password-reset token. It answers 200 whether
// or not the email exists.
func handleRequestReset(s store.Store, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "email is required")
			return
		}

		now := time.Now()
		acc, err := s.AccountByEmail(c.Request.Context(), req.Email)
		if err == nil {
			token, expires, tokenErr := auth.NewActionToken(now)
			if tokenErr == nil {
				acc.ResetToken = &token
				acc.ResetTokenExpires = &expires
				if updateErr := s.UpdateAccount(c.Request.Context(), acc); updateErr == nil {
					if pubErr := notifier.Publish(notify.Event{
						Type:       notify.EventPasswordReset,
						AccountID:  acc.ID,
						Subject:    acc.Email,
						Token:      token,
						OccurredAt: now,
					}); pubErr != nil {
						logrus.WithError(pubErr).Warn("failed to publish reset event")
					}
				}
			}
		}

		httputil.OK(c, "if the address exists, a reset link has been sent", nil)
	}
}

type newPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// handleNewPassword consumes a reset token and revokes existing sessions.
func handleNewPassword(s store.Store, sessions *cache.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req newPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, http.StatusBadRequest, "token and password (8+ chars) are required")
			return
		}

		acc, err := s.AccountByResetToken(c.Request.Context(), req.Token, time.Now())
		if err != nil {
			httputil.Fail(c, http.StatusBadRequest, "invalid or expired reset token")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		acc.PasswordHash = hash
		acc.ResetToken = nil
		acc.ResetTokenExpires = nil
		if err := s.UpdateAccount(c.Request.Context(), acc); err != nil {
			httputil.FromError(c, err)
			return
		}
		if sessions != nil {
			if err := sessions.RevokeAll(c.Request.Context(), acc.ID); err != nil {
				logrus.WithError(err).Warn("failed to revoke sessions after reset")
			}
		}
		httputil.OK(c, "password updated", nil)
	}
}
