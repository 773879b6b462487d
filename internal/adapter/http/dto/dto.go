package dto

import (
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/core/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountRequest is a discount value plus its kind.
type DiscountRequest struct {
	Value decimal.Decimal `json:"value" binding:"money"`
	Kind  string          `json:"kind" binding:"required,discount_kind"`
}

// LineRequest is one cart line. UnitPrice is tax-inclusive.
type LineRequest struct {
	ProductID string           `json:"product_id" binding:"required,max=64,safe_id"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price" binding:"money"`
	TaxRate   decimal.Decimal  `json:"tax_rate" binding:"tax_rate"`
	TaxCode   string           `json:"tax_code,omitempty" binding:"max=16,fiscal_text"`
	Discount  *DiscountRequest `json:"discount,omitempty"`
}

// PaymentRequest is one tender.
type PaymentRequest struct {
	Method string          `json:"method" binding:"required,oneof=cash card cheque voucher other"`
	Amount decimal.Decimal `json:"amount" binding:"money"`
}

// SaleRequest is the request body for POST /tickets. The tenant comes from the token.
type SaleRequest struct {
	EstablishmentID string           `json:"establishment_id" binding:"required,uuid"`
	RegisterID      string           `json:"register_id" binding:"required,uuid"`
	SellerID        string           `json:"seller_id,omitempty" binding:"omitempty,max=64,safe_id"`
	CustomerID      *string          `json:"customer_id,omitempty" binding:"omitempty,max=64,safe_id"`
	Lines           []LineRequest    `json:"line_items" binding:"required,min=1,max=500,dive"`
	Payments        []PaymentRequest `json:"payments" binding:"max=20,dive"`
	Discount        *DiscountRequest `json:"global_discount,omitempty"`
}

// CancelRequest is the request body for POST /tickets/:number/cancel.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// CloseDayRequest is the request body for POST /closures. Date defaults to today.
type CloseDayRequest struct {
	RegisterID string  `json:"register_id" binding:"required,uuid"`
	Date       *string `json:"date,omitempty"`
}

// VerifyQuery holds the query parameters of GET /chain/verify.
type VerifyQuery struct {
	RegisterID string `form:"register_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
}

// ToDiscount converts an optional discount request.
func (d *DiscountRequest) ToDiscount() *domain.Discount {
	if d == nil {
		return nil
	}
	return &domain.Discount{Value: d.Value, Kind: domain.DiscountKind(d.Kind)}
}

// LineInputs converts the cart to pricing inputs.
func (r *SaleRequest) LineInputs() []pricing.LineInput {
	lines := make([]pricing.LineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = pricing.LineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			TaxRate:   l.TaxRate,
			TaxCode:   l.TaxCode,
			Discount:  l.Discount.ToDiscount(),
		}
	}
	return lines
}

// DomainPayments converts the tenders.
func (r *SaleRequest) DomainPayments() []domain.Payment {
	payments := make([]domain.Payment, len(r.Payments))
	for i, p := range r.Payments {
		payments[i] = domain.Payment{Method: domain.PaymentMethod(p.Method), Amount: p.Amount}
	}
	return payments
}

// TotalsResponse carries the three fiscal amounts as fixed two-decimal strings.
type TotalsResponse struct {
	HT  string `json:"total_ht"`
	TVA string `json:"total_tva"`
	TTC string `json:"total_ttc"`
}

// DiscountResponse mirrors a stored discount.
type DiscountResponse struct {
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

// LineResponse is one priced line.
type LineResponse struct {
	Position       int               `json:"position"`
	ProductID      string            `json:"product_id"`
	Quantity       string            `json:"quantity"`
	UnitPrice      string            `json:"unit_price"`
	TaxRate        string            `json:"tax_rate"`
	TaxCode        string            `json:"tax_code,omitempty"`
	Discount       *DiscountResponse `json:"discount,omitempty"`
	DiscountAmount string            `json:"discount_amount"`
	TotalHT        string            `json:"total_ht"`
	TotalTVA       string            `json:"total_tva"`
	TotalTTC       string            `json:"total_ttc"`
}

// PaymentResponse is one tender.
type PaymentResponse struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

// SignatureResponse exposes the signature kind so placeholders are never mistaken for certified ones.
type SignatureResponse struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	KeyID string `json:"key_id,omitempty"`
}

// TicketResponse is the ledger write response.
type TicketResponse struct {
	TicketNumber    string            `json:"ticket_number"`
	EstablishmentID string            `json:"establishment_id"`
	RegisterID      string            `json:"register_id"`
	SellerID        string            `json:"seller_id"`
	CustomerID      *string           `json:"customer_id,omitempty"`
	SaleTimestamp   string            `json:"sale_timestamp"`
	Totals          TotalsResponse    `json:"totals"`
	GlobalDiscount  *DiscountResponse `json:"global_discount,omitempty"`
	Lines           []LineResponse    `json:"line_items"`
	Payments        []PaymentResponse `json:"payments"`
	PreviousHash    string            `json:"previous_hash"`
	Hash            string            `json:"hash"`
	Signature       SignatureResponse `json:"signature"`
	Status          string            `json:"status"`
	CancelledAt     *string           `json:"cancelled_at,omitempty"`
	CancelReason    *string           `json:"cancel_reason,omitempty"`
	ClosureID       *string           `json:"closure_id,omitempty"`
}

// PaymentTotalResponse is the amount collected for one method.
type PaymentTotalResponse struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

// ClosureResponse is the closure response. Hash lets an archive confirm the seal.
type ClosureResponse struct {
	ID                string                 `json:"closure_id"`
	RegisterID        string                 `json:"register_id"`
	EstablishmentID   string                 `json:"establishment_id"`
	Date              string                 `json:"date"`
	Hash              string                 `json:"hash"`
	Signature         SignatureResponse      `json:"signature"`
	TicketCount       int                    `json:"ticket_count"`
	CancelledCount    int                    `json:"cancelled_count"`
	Totals            TotalsResponse         `json:"totals"`
	PaymentTotals     []PaymentTotalResponse `json:"payment_totals"`
	FirstTicketNumber string                 `json:"first_ticket_number,omitempty"`
	LastTicketNumber  string                 `json:"last_ticket_number,omitempty"`
	LastTicketHash    string                 `json:"last_ticket_hash"`
	ClosedBy          string                 `json:"closed_by"`
	ClosedAt          string                 `json:"closed_at"`
}

// BrokenLinkResponse names one failing ticket.
type BrokenLinkResponse struct {
	TicketNumber string `json:"ticket_number"`
	RegisterID   string `json:"register_id"`
	Reason       string `json:"reason"`
	Expected     string `json:"expected"`
	Actual       string `json:"actual"`
}

// VerificationResponse is the chain verification report.
type VerificationResponse struct {
	IsValid           bool                 `json:"is_valid"`
	TicketsExamined   int                  `json:"tickets_examined"`
	RegistersExamined int                  `json:"registers_examined"`
	Truncated         bool                 `json:"truncated"`
	BrokenLinks       []BrokenLinkResponse `json:"broken_links"`
	VerifiedAt        string               `json:"verified_at"`
}

// NewTicketResponse renders a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		TicketNumber:    t.Number,
		EstablishmentID: t.EstablishmentID.String(),
		RegisterID:      t.RegisterID.String(),
		SellerID:        t.SellerID,
		CustomerID:      t.CustomerID,
		SaleTimestamp:   formatTime(t.SoldAt),
		Totals:          newTotals(t.Totals),
		GlobalDiscount:  newDiscount(t.Discount),
		Lines:           make([]LineResponse, len(t.Lines)),
		Payments:        make([]PaymentResponse, len(t.Payments)),
		PreviousHash:    t.PreviousHash,
		Hash:            t.CurrentHash,
		Signature:       newSignature(t.Signature),
		Status:          string(t.Status),
		CancelReason:    t.CancelReason,
	}
	for i, l := range t.Lines {
		resp.Lines[i] = LineResponse{
			Position:       l.Position,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity.String(),
			UnitPrice:      l.UnitPrice.StringFixed(2),
			TaxRate:        l.TaxRate.StringFixed(2),
			TaxCode:        l.TaxCode,
			Discount:       newDiscount(l.Discount),
			DiscountAmount: l.DiscountAmount.StringFixed(2),
			TotalHT:        l.TotalHT.StringFixed(2),
			TotalTVA:       l.TotalTVA.StringFixed(2),
			TotalTTC:       l.TotalTTC.StringFixed(2),
		}
	}
	for i, p := range t.Payments {
		resp.Payments[i] = PaymentResponse{Method: string(p.Method), Amount: p.Amount.StringFixed(2)}
	}
	if t.CancelledAt != nil {
		s := formatTime(*t.CancelledAt)
		resp.CancelledAt = &s
	}
	if t.ClosureID != nil {
		s := t.ClosureID.String()
		resp.ClosureID = &s
	}
	return resp
}

// NewClosureResponse renders a closure.
func NewClosureResponse(c *domain.Closure) ClosureResponse {
	resp := ClosureResponse{
		ID:                c.ID.String(),
		RegisterID:        c.RegisterID.String(),
		EstablishmentID:   c.EstablishmentID.String(),
		Date:              c.BusinessDate.Format(hashchain.DateLayout),
		Hash:              c.Hash,
		Signature:         newSignature(c.Signature),
		TicketCount:       c.TicketCount,
		CancelledCount:    c.CancelledCount,
		Totals:            newTotals(c.Totals),
		PaymentTotals:     make([]PaymentTotalResponse, len(c.PaymentTotals)),
		FirstTicketNumber: c.FirstTicketNumber,
		LastTicketNumber:  c.LastTicketNumber,
		LastTicketHash:    c.LastTicketHash,
		ClosedBy:          c.ClosedBy,
		ClosedAt:          formatTime(c.ClosedAt),
	}
	for i, p := range c.PaymentTotals {
		resp.PaymentTotals[i] = PaymentTotalResponse{Method: string(p.Method), Amount: p.Amount.StringFixed(2)}
	}
	return resp
}

// NewVerificationResponse renders a report. BrokenLinks is never null.
func NewVerificationResponse(r *domain.VerificationReport) VerificationResponse {
	resp := VerificationResponse{
		IsValid:           r.IsValid,
		TicketsExamined:   r.TicketsExamined,
		RegistersExamined: r.RegistersExamined,
		Truncated:         r.Truncated,
		BrokenLinks:       make([]BrokenLinkResponse, 0, len(r.BrokenLinks)),
		VerifiedAt:        formatTime(r.VerifiedAt),
	}
	for _, b := range r.BrokenLinks {
		resp.BrokenLinks = append(resp.BrokenLinks, BrokenLinkResponse{
			TicketNumber: b.TicketNumber,
			RegisterID:   b.RegisterID.String(),
			Reason:       string(b.Reason),
			Expected:     b.Expected,
			Actual:       b.Actual,
		})
	}
	return resp
}

// ParseUUID parses a path or body identifier; ok is false when malformed.
func ParseUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil
}

func newTotals(t domain.Totals) TotalsResponse {
	return TotalsResponse{HT: t.HT.StringFixed(2), TVA: t.TVA.StringFixed(2), TTC: t.TTC.StringFixed(2)}
}

func newDiscount(d *domain.Discount) *DiscountResponse {
	if d == nil {
		return nil
	}
	return &DiscountResponse{Value: d.Value.String(), Kind: string(d.Kind)}
}

func newSignature(s domain.Signature) SignatureResponse {
	return SignatureResponse{Kind: string(s.Kind), Value: s.Value, KeyID: s.KeyID}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(hashchain.TimestampLayout)
}
