package handler

import (
	"pos-fiscal-ledger/internal/adapter/http/middleware"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	ClosureSvc     ports.ClosureService
	VerifySvc      ports.VerificationService
	TokenSvc       ports.TokenService
	AuditSvc       ports.AuditService // nil = edge rejections not audited
	RateLimitStore middleware.Limiter // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	CORSOrigins    []string // empty = no CORS headers
	Mode           string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if len(deps.CORSOrigins) > 0 {
		r.Use(middleware.CORS(deps.CORSOrigins))
	}
	r.Use(metrics.PrometheusMiddleware())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditRejections(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", metrics.Handler())

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	ticketHandler := NewTicketHandler(deps.LedgerSvc)
	tickets := v1.Group("/tickets")
	{
		tickets.POST("", rl("tickets"), ticketHandler.RecordSale)
		tickets.GET("/:number", rl("reads"), ticketHandler.GetTicket)
		tickets.POST("/:number/cancel", rl("cancel"), ticketHandler.CancelTicket)
	}

	closureHandler := NewClosureHandler(deps.ClosureSvc)
	v1.POST("/closures", middleware.RequireRole(ports.RoleManager), rl("closures"), closureHandler.CloseDay)
	v1.GET("/registers/:id/closures/:date", rl("reads"), closureHandler.GetClosure)

	verifyHandler := NewVerificationHandler(deps.VerifySvc)
	v1.GET("/chain/verify", rl("verify"), verifyHandler.VerifyChain)

	return r
}
