package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/blob"
	"github.com/taskhive/taskhive/internal/httputil"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/store"
)

const maxUploadBytes = 5 << 20

func handleGetProfile(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.Principal(c)
		acc, err := s.AccountByID(c.Request.Context(), p.AccountID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "", acc)
	}
}

// handleUpdateProfile updates name and password, and accepts an optional
// multipart photo that lands in blob storage.
func handleUpdateProfile(s store.Store, uploader blob.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := middleware.Principal(c)
		acc, err := s.AccountByID(c.Request.Context(), p.AccountID)
		if err != nil {
			httputil.FromError(c, err)
			return
		}

		if name := c.PostForm("name"); name != "" {
			acc.Name = name
		}
		if password := c.PostForm("password"); password != "" {
			if len(password) < 8 {
				httputil.Fail(c, http.StatusBadRequest, "password must be at least 8 characters")
				return
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			acc.PasswordHash = hash
		}

		if file, err := c.FormFile("photo"); err == nil {
			if uploader == nil {
				httputil.Fail(c, http.StatusServiceUnavailable, "file uploads are not configured")
				return
			}
			if file.Size > maxUploadBytes {
				httputil.Fail(c, http.StatusBadRequest, "photo exceeds the 5MB limit")
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
			url, err := uploader.Upload(c.Request.Context(), "profiles", file.Header.Get("Content-Type"), data)
			if err != nil {
				httputil.FromError(c, err)
				return
			}
			acc.PhotoURL = &url
		}

		if err := s.UpdateAccount(c.Request.Context(), acc); err != nil {
			httputil.FromError(c, err)
			return
		}
		httputil.OK(c, "profile updated", acc)
	}
}
