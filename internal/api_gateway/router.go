package api_gateway

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/handler"
	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/config"
)

const healthPath = "/health"

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	cfg *config.Config,
	ledgerHandler *handler.LedgerHandler,
	summaryHandler *handler.SummaryHandler,
	healthHandler *handler.HealthHandler,
) {
	prefix := cfg.Server.RoutePrefix

	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger, healthPath, prefix+healthPath))
	r.Use(middleware.CORS(cfg.CORS))

	// Liveness check outside the prefix for load balancers
	r.GET(healthPath, healthHandler.Health)

	api := r.Group(prefix)
	{
		api.GET(healthPath, healthHandler.Health)

		// Writes
		api.POST("/send-money", ledgerHandler.SendMoney)
		api.POST("/request-money", ledgerHandler.RequestMoney)
		api.POST("/pay-bills", ledgerHandler.PayBills)

		// Activity
		api.GET("/transactions", ledgerHandler.ListTransactions)
		api.GET("/transactions/:id", ledgerHandler.GetTransaction)
		api.GET("/requests", ledgerHandler.ListRequests)
		api.GET("/bill-types", ledgerHandler.BillTypes)

		// Derived views
		api.GET("/summary", summaryHandler.Summary)
		api.GET("/budgets", summaryHandler.Budgets)
	}
}
