package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"care-portal-server/internal/config"
	"care-portal-server/internal/models"
	"care-portal-server/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func newAuthRouter(cfg *config.Config, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", AuthMiddleware(cfg))
	if len(roles) > 0 {
		group.Use(RoleAuthMiddleware(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RolePatient}
	user.ID = "44444444-4444-4444-4444-444444444444"
	token, _, err := utils.GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	r := newAuthRouter(cfg)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doRequest(r, tt.header); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	cfg := testConfig()

	patient := &models.User{Role: models.RolePatient}
	patient.ID = "44444444-4444-4444-4444-444444444444"
	patientToken, _, _ := utils.GenerateTokens(patient, cfg)

	doctor := &models.User{Role: models.RoleDoctor}
	doctor.ID = "55555555-5555-5555-5555-555555555555"
	doctorToken, _, _ := utils.GenerateTokens(doctor, cfg)

	r := newAuthRouter(cfg, models.RoleDoctor)

	if w := doRequest(r, "Bearer "+doctorToken); w.Code != http.StatusOK {
		t.Errorf("doctor: status = %d, want 200", w.Code)
	}
	if w := doRequest(r, "Bearer "+patientToken); w.Code != http.StatusForbidden {
		t.Errorf("patient: status = %d, want 403", w.Code)
	}
}
