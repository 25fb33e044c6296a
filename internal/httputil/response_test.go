package httputil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/taskhive/taskhive/internal/apperr"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)
	return w
}

func TestFromErrorStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{apperr.ErrUnverified, http.StatusForbidden},
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.ErrForbidden, http.StatusNotFound},
		{apperr.ErrConflict, http.StatusConflict},
		{apperr.ErrValidation, http.StatusUnprocessableEntity},
		{apperr.ErrInvalidStatus, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := respond(tt.err)
		assert.Equal(t, tt.want, w.Code, "error %v", tt.err)
	}
}

// A scope denial must be indistinguishable from a missing row.
func TestForbiddenMatchesNotFoundBody(t *testing.T) {
	forbidden := respond(apperr.ErrForbidden)
	missing := respond(apperr.ErrNotFound)

	assert.Equal(t, missing.Code, forbidden.Code)
	assert.Equal(t, missing.Body.String(), forbidden.Body.String())
}

func TestWrappedErrorsStillMap(t *testing.T) {
	w := respond(fmt.Errorf("updating task: %w", apperr.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
