package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/config"
)

// CORS allows browser clients on the configured origins to call the API.
// A single "*" entry allows any origin.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", CorrelationIDHeader, "Idempotency-Key"},
		ExposeHeaders: []string{CorrelationIDHeader, "X-Idempotent-Replayed"},
		MaxAge:        cfg.MaxAge,
	}

	if slices.Contains(cfg.AllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(corsCfg)
}
