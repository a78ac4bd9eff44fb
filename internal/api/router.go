package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"triplog/internal/config"
	"triplog/internal/handler"
	"triplog/internal/middleware"
)

// SetupRouter builds the review API over the persisted ledger.
func SetupRouter(cfg *config.Config, ledgerHandler *handler.LedgerHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Triplog review API is running",
		})
	})

	authHandler := handler.NewAuthHandler(cfg.JWTSecret)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(120, time.Minute))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/token", authHandler.IssueToken)
		}

		ledger := api.Group("/ledger")
		{
			ledger.GET("/trips", ledgerHandler.GetTrips)
			ledger.GET("/trips/:id", ledgerHandler.GetTripByID)
			ledger.GET("/report", ledgerHandler.GetReport)
			ledger.GET("/summary", ledgerHandler.GetSummary)

			// Mutating routes require a token
			protected := ledger.Group("")
			protected.Use(middleware.Auth(cfg.JWTSecret))
			{
				protected.POST("/refilter", ledgerHandler.Refilter)
			}
		}
	}

	return r
}
