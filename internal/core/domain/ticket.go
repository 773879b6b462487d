package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketStatus is the lifecycle state of a ticket. Cancelling never frees the number.
type TicketStatus string

const (
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// DiscountKind tells whether a discount value is a percentage or an amount.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// IsValid reports whether k is a known discount kind.
func (k DiscountKind) IsValid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

// Discount is a value plus its kind. A percentage of 10 means 10%.
type Discount struct {
	Value decimal.Decimal `json:"value"`
	Kind  DiscountKind    `json:"kind"`
}

// PaymentMethod identifies a tender type.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentCheque  PaymentMethod = "cheque"
	PaymentVoucher PaymentMethod = "voucher"
	PaymentOther   PaymentMethod = "other"
)

// Payment is one tender applied to a ticket.
type Payment struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals are the three fiscal amounts: before tax, tax, and tax-inclusive.
type Totals struct {
	HT  decimal.Decimal `json:"total_ht"`
	TVA decimal.Decimal `json:"total_tva"`
	TTC decimal.Decimal `json:"total_ttc"`
}

// Add returns t + o.
func (t Totals) Add(o Totals) Totals {
	return Totals{HT: t.HT.Add(o.HT), TVA: t.TVA.Add(o.TVA), TTC: t.TTC.Add(o.TTC)}
}

// LineItem is one priced line. UnitPrice is tax-inclusive. DiscountAmount is
// everything taken off the line: its own discount plus its share of the global one.
type LineItem struct {
	Position       int             `json:"position"`
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxCode        string          `json:"tax_code"`
	Discount       *Discount       `json:"discount,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalHT        decimal.Decimal `json:"total_ht"`
	TotalTVA       decimal.Decimal `json:"total_tva"`
	TotalTTC       decimal.Decimal `json:"total_ttc"`
}

// Ticket is one recorded sale. Every field feeding the digest is immutable once
// written; only the cancellation fields and the one-time closure stamp change.
type Ticket struct {
	ID                   uuid.UUID    `json:"id"`
	Seq                  int64        `json:"-"` // storage insertion order
	TenantID             uuid.UUID    `json:"tenant_id"`
	Number               string       `json:"ticket_number"`
	EstablishmentID      uuid.UUID    `json:"establishment_id"`
	RegisterID           uuid.UUID    `json:"register_id"`
	EstablishmentOrdinal int          `json:"-"`
	RegisterOrdinal      int          `json:"-"`
	SellerID             string       `json:"seller_id"`
	CustomerID           *string      `json:"customer_id,omitempty"`
	SoldAt               time.Time    `json:"sale_timestamp"`
	Totals               Totals       `json:"totals"`
	Discount             *Discount    `json:"global_discount,omitempty"`
	Lines                []LineItem   `json:"line_items"`
	Payments             []Payment    `json:"payments"`
	PreviousHash         string       `json:"previous_hash"`
	CurrentHash          string       `json:"current_hash"`
	Signature            Signature    `json:"signature"`
	Status               TicketStatus `json:"status"`
	CancelledAt          *time.Time   `json:"cancelled_at,omitempty"`
	CancelReason         *string      `json:"cancel_reason,omitempty"`
	ClosureID            *uuid.UUID   `json:"closure_id,omitempty"`
	ClosedAt             *time.Time   `json:"closed_at,omitempty"`
}

// IsClosed reports whether a closure has sealed the ticket.
func (t *Ticket) IsClosed() bool {
	return t.ClosureID != nil
}

// IsActive reports whether the ticket counts towards closure totals.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusCompleted
}

// PaidAmount sums every payment on the ticket.
func (t *Ticket) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
