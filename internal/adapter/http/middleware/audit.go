package middleware

import (
	"net/http"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditRejections records an ERROR audit entry for every request this package
// turned away (bad token, forbidden role, rate limit). Rejections raised by the
// services are audited there.
func AuditRejections(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		code := c.GetString(ctxRejectCode)
		if code == "" {
			return
		}

		var tenantID *uuid.UUID
		if tid, _, ok := Operator(c); ok {
			tenantID = &tid
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		auditSvc.Record(c.Request.Context(), &domain.AuditEntry{
			TenantID:   tenantID,
			Event:      domain.AuditError,
			EntityType: "request",
			EntityID:   c.Request.Method + " " + path,
			Actor:      c.GetString(CtxOperatorID),
			Metadata: map[string]any{
				"operation": "http_request",
				"code":      code,
				"reason":    http.StatusText(c.Writer.Status()),
			},
			Origin: c.ClientIP(),
		})
	}
}
