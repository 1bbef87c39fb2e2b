package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"care-portal-server/internal/store"
)

func TestStoreErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", store.NotFoundError("appointment not found"), http.StatusNotFound},
		{"forbidden", store.ForbiddenError("document not found or not owned by you"), http.StatusForbidden},
		{"conflict", store.ConflictError("folder is not empty"), http.StatusConflict},
		{"validation", store.ValidationError("folder name is reserved"), http.StatusBadRequest},
		{"internal", store.InternalError("query failed", errors.New("driver: bad connection")), http.StatusInternalServerError},
		{"plain error", errors.New("something broke"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			StoreError(c, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	StoreError(c, store.InternalError("query failed", errors.New("dsn user:pass@tcp")))
	if strings.Contains(w.Body.String(), "dsn") {
		t.Errorf("internal error details leaked to the client: %s", w.Body.String())
	}
}
