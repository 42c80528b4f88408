package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/personal-finance-ledger/internal/config"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(origins ...string) *gin.Engine {
		router := gin.New()
		router.Use(CORS(config.CORSConfig{AllowedOrigins: origins, MaxAge: time.Hour}))
		router.POST("/send-money", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("PreflightFromAllowedOrigin", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, "/send-money", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")

		rr := httptest.NewRecorder()
		newRouter("https://app.example.com").ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("RejectsUnknownOrigin", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/send-money", nil)
		req.Header.Set("Origin", "https://evil.example.net")

		rr := httptest.NewRecorder()
		newRouter("https://app.example.com").ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Wildcard", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/send-money", nil)
		req.Header.Set("Origin", "https://anything.example.org")

		rr := httptest.NewRecorder()
		newRouter("*").ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
