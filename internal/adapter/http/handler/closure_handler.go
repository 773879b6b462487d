package handler

import (
	"time"

	"pos-fiscal-ledger/internal/adapter/http/dto"
	"pos-fiscal-ledger/internal/adapter/http/middleware"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/pkg/apperror"
	"pos-fiscal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// ClosureHandler handles daily closure endpoints.
type ClosureHandler struct {
	closureSvc ports.ClosureService
}

// NewClosureHandler creates a new ClosureHandler.
func NewClosureHandler(closureSvc ports.ClosureService) *ClosureHandler {
	return &ClosureHandler{closureSvc: closureSvc}
}

// CloseDay handles POST /api/v1/closures.
func (h *ClosureHandler) CloseDay(c *gin.Context) {
	tenantID, operator, ok := middleware.Operator(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	registerID, _ := dto.ParseUUID(req.RegisterID)

	var date *time.Time
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		date = &d
	}

	closure, err := h.closureSvc.CloseDay(c.Request.Context(), ports.CloseDayRequest{
		TenantID:   tenantID,
		RegisterID: registerID,
		Date:       date,
		Operator:   operator,
		Origin:     c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewClosureResponse(closure))
}

// GetClosure handles GET /api/v1/registers/:id/closures/:date.
func (h *ClosureHandler) GetClosure(c *gin.Context) {
	tenantID, _, ok := middleware.Operator(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	registerID, ok := dto.ParseUUID(c.Param("id"))
	if !ok {
		response.Error(c, apperror.Validation("register id must be a UUID"))
		return
	}
	date, err := parseDate(c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	closure, err := h.closureSvc.GetClosure(c.Request.Context(), tenantID, registerID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewClosureResponse(closure))
}

// parseDate reads a YYYY-MM-DD business date.
func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(hashchain.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperror.ErrInvalidDate(raw)
	}
	return d, nil
}
