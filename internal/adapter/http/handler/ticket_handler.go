package handler

import (
	"pos-fiscal-ledger/internal/adapter/http/dto"
	"pos-fiscal-ledger/internal/adapter/http/middleware"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/pkg/apperror"
	"pos-fiscal-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey lets a register retry a sale without recording it twice.
const HeaderIdempotencyKey = "Idempotency-Key"

// TicketHandler handles ledger write and ticket read endpoints.
type TicketHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(ledgerSvc ports.LedgerService) *TicketHandler {
	return &TicketHandler{ledgerSvc: ledgerSvc}
}

// RecordSale handles POST /api/v1/tickets.
func (h *TicketHandler) RecordSale(c *gin.Context) {
	tenantID, operator, ok := middleware.Operator(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	establishmentID, _ := dto.ParseUUID(req.EstablishmentID)
	registerID, _ := dto.ParseUUID(req.RegisterID)
	seller := req.SellerID
	if seller == "" {
		seller = operator
	}

	ticket, err := h.ledgerSvc.RecordSale(c.Request.Context(), ports.SaleRequest{
		TenantID:        tenantID,
		EstablishmentID: establishmentID,
		RegisterID:      registerID,
		SellerID:        seller,
		CustomerID:      req.CustomerID,
		Lines:           req.LineInputs(),
		Payments:        req.DomainPayments(),
		Discount:        req.Discount.ToDiscount(),
		IdempotencyKey:  c.GetHeader(HeaderIdempotencyKey),
		Origin:          c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTicketResponse(ticket))
}

// GetTicket handles GET /api/v1/tickets/:number.
func (h *TicketHandler) GetTicket(c *gin.Context) {
	tenantID, _, ok := middleware.Operator(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	ticket, err := h.ledgerSvc.GetTicket(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTicketResponse(ticket))
}

// CancelTicket handles POST /api/v1/tickets/:number/cancel.
func (h *TicketHandler) CancelTicket(c *gin.Context) {
	tenantID, operator, ok := middleware.Operator(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	ticket, err := h.ledgerSvc.CancelTicket(c.Request.Context(), ports.CancelRequest{
		TenantID:     tenantID,
		TicketNumber: c.Param("number"),
		Reason:       req.Reason,
		Actor:        operator,
		Origin:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTicketResponse(ticket))
}
