package middleware

import (
	"net/http"
	"net/http/httptest"
	"studylife-go/pkg/token"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(m *token.JWTManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetUint(ctxUserID), "username": c.GetString(ctxUsername)})
	})
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	m := token.NewJWTManager("test-secret", 1, 1)
	r := authRouter(m)

	access, err := m.GenerateToken(7, "alice")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(7, "alice")
	require.NoError(t, err)

	tests := []struct {
		name string
		auth string
		code int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", access, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"access token", "Bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.auth)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"userId":7,"username":"alice"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestAuthMiddleware_OtherSecret(t *testing.T) {
	other := token.NewJWTManager("other-secret", 1, 1)
	tok, err := other.GenerateToken(1, "bob")
	require.NoError(t, err)

	w := get(authRouter(token.NewJWTManager("test-secret", 1, 1)), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}

func TestMetrics_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
