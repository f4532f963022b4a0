package main

import (
	"database/sql"
	"net/http"
	"time"

	"prontoplus/internal/httpapi"
	"prontoplus/internal/rbac"
	"prontoplus/internal/webhook"
	"prontoplus/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type apiDeps struct {
	AuthMW   gin.HandlerFunc
	Webhook  webhook.Handler
	Handlers httpapi.Handlers

	DB    *sql.DB
	Redis *redis.Client
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps apiDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if deps.DB != nil {
			if err := utils.HealthCheck(c.Request.Context(), deps.DB, 2*time.Second); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
				return
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public endpoint, HMAC-verified inside the handler).
	r.POST("/webhooks/telnyx", deps.Webhook.Handle)

	// AUTH routes (token issuance, public).
	// NOTE: The login handler is a skeleton; real credential validation is not implemented.
	r.POST("/v1/auth/login", deps.Handlers.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(deps.AuthMW)
	{
		// CALLS routes
		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			calls.GET("", deps.Handlers.ListCalls)
			calls.GET("/:call_id", deps.Handlers.GetCall)
		}

		// LEADS routes
		leads := v1.Group("/leads")
		leads.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAgent, rbac.RoleSuperAdmin))
		{
			leads.PATCH("/:lead_id/tier", deps.Handlers.SetLeadTier)
		}

		// ANALYTICS routes
		reports := v1.Group("/analytics")
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			reports.GET("/summary", deps.Handlers.CallsSummary)
			reports.GET("/leads", deps.Handlers.LeadInterest)
		}
	}
}
