package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safiri/config"
	"safiri/internal/auth"
	"safiri/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(cfg *config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	r.GET("/admin-only", AuthRequired(cfg), AdminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func jwtTestConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-secret",
		RefreshSecret: "test-refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "safiri",
	}
}

func TestAuthRequired(t *testing.T) {
	cfg := jwtTestConfig()
	r := testRouter(cfg)

	token, err := auth.GenerateAccessToken(cfg, 7, "user@example.com", domain.RoleClient)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	cfg := jwtTestConfig()
	r := testRouter(cfg)

	expired := jwtTestConfig()
	expired.AccessExpiry = -time.Minute
	token, err := auth.GenerateAccessToken(expired, 7, "user@example.com", domain.RoleClient)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequired(t *testing.T) {
	cfg := jwtTestConfig()
	r := testRouter(cfg)

	clientToken, err := auth.GenerateAccessToken(cfg, 7, "user@example.com", domain.RoleClient)
	require.NoError(t, err)
	adminToken, err := auth.GenerateAccessToken(cfg, 1, "admin@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
