package middleware

import (
	"net/http"
	"strings"
	"time"

	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/pkg/apperror"
	"pos-fiscal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"

	// Context keys
	CtxTenantID   = "tenant_id"
	CtxOperatorID = "operator_id"
	CtxRole       = "role"
	ctxRejectCode = "reject_code"
)

// reject aborts the request with err and remembers its code for AuditRejections.
func reject(c *gin.Context, err *apperror.AppError) {
	c.Set(ctxRejectCode, err.Code)
	response.Error(c, err)
	c.Abort()
}

// JWTAuth validates the operator bearer token and exposes its claims on the context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenStr == "" {
			reject(c, apperror.ErrInvalidToken())
			return
		}

		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("token rejected")
			reject(c, apperror.ErrInvalidToken())
			return
		}

		c.Set(CtxTenantID, claims.TenantID)
		c.Set(CtxOperatorID, claims.OperatorID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects operators whose role is not one of roles. Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		reject(c, apperror.ErrForbidden())
	}
}

// Operator returns the tenant and operator set by JWTAuth.
func Operator(c *gin.Context) (uuid.UUID, string, bool) {
	v, ok := c.Get(CtxTenantID)
	if !ok {
		return uuid.Nil, "", false
	}
	tenantID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	return tenantID, c.GetString(CtxOperatorID), true
}

// RequestID propagates an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(response.RequestIDKey)).
			Str("operator_id", c.GetString(CtxOperatorID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.New("SYS_002", "Internal server error", http.StatusInternalServerError))
				c.Abort()
			}
		}()
		c.Next()
	}
}
