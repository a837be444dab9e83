package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(origins, "X-Session-ID"))
	r.GET("/api/v1/wizard", func(c *gin.Context) {
		c.Header("X-Session-ID", "sess-1")
		c.Status(http.StatusOK)
	})
	return r
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := corsRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wizard", nil)
	req.Header.Set("Origin", "https://ride.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "X-Session-ID")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-session-id")
}

func TestCORSMiddleware_ExposesSessionHeader(t *testing.T) {
	r := corsRouter([]string{"https://ride.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wizard", nil)
	req.Header.Set("Origin", "https://ride.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://ride.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, exposed, "x-session-id")
	assert.Contains(t, exposed, "x-request-id")
}

func TestCORSMiddleware_RejectsUnknownOrigin(t *testing.T) {
	r := corsRouter([]string{"https://ride.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wizard", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
