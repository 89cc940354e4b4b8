package main

import (
	"net/http"

	"fixer.backend/internal/interfaces/http/handlers"
	"fixer.backend/internal/interfaces/http/middleware"
	"fixer.backend/internal/telemetry"
	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	jobHandler     *handlers.JobHandler
	payoutHandler  *handlers.PayoutHandler
	webhookHandler *handlers.WebhookHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Job routes (protected)
		jobs := v1.Group("/jobs")
		jobs.Use(d.authMiddleware)
		{
			jobs.POST("", middleware.IdempotencyMiddleware(), d.jobHandler.PostJob)
			jobs.GET("/:id", d.jobHandler.GetJob)
			jobs.GET("", d.jobHandler.ListMyJobs)
		}

		// Payout account routes (protected)
		payouts := v1.Group("/payouts")
		payouts.Use(d.authMiddleware)
		{
			payouts.GET("/account", d.payoutHandler.GetAccount)
			payouts.POST("/onboarding-link", d.payoutHandler.CreateOnboardingLink)
		}

		// Webhook from the payment processor (signature-authenticated)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/processor", d.webhookHandler.HandleProcessorWebhook)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireRole("admin"))
		{
			admin.GET("/interventions", d.adminHandler.ListInterventions)
			admin.POST("/interventions/:id/resolve", d.adminHandler.ResolveIntervention)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "fixer-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(telemetry.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
