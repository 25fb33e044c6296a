// Package httputil defines the uniform response envelope and the mapping
// from domain errors to HTTP statuses.
package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/taskhive/internal/apperr"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PagedData wraps list payloads with the total row count.
type PagedData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// OK sends a 200 response.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// Created sends a 201 response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

// Fail sends an error response with an explicit status.
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{Success: false, Error: message})
}

// FromError maps a domain error to its HTTP response. Scope denials answer
// with the same status and body as a missing row, so responses never reveal
// whether an id exists in another tenant.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		Fail(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, apperr.ErrUnverified):
		Fail(c, http.StatusForbidden, "account not verified")
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrNotFound):
		Fail(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, apperr.ErrConflict):
		Fail(c, http.StatusConflict, "resource already exists")
	case errors.Is(err, apperr.ErrValidation):
		Fail(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperr.ErrInvalidStatus):
		Fail(c, http.StatusBadRequest, err.Error())
	default:
		logrus.WithError(err).Error("unhandled error")
		Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
