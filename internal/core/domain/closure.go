package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoTicketsHash stands in for the last ticket hash of a day without active tickets.
const NoTicketsHash = "NO_TICKETS"

// PaymentTotal is the amount collected for one payment method over a closure.
type PaymentTotal struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Closure seals one (register, business day). Created at most once, never updated.
type Closure struct {
	ID                uuid.UUID      `json:"id"`
	TenantID          uuid.UUID      `json:"tenant_id"`
	EstablishmentID   uuid.UUID      `json:"establishment_id"`
	RegisterID        uuid.UUID      `json:"register_id"`
	BusinessDate      time.Time      `json:"date"`
	TicketCount       int            `json:"ticket_count"`
	CancelledCount    int            `json:"cancelled_count"`
	Totals            Totals         `json:"totals"`
	PaymentTotals     []PaymentTotal `json:"payment_totals"`
	FirstTicketNumber string         `json:"first_ticket_number,omitempty"`
	LastTicketNumber  string         `json:"last_ticket_number,omitempty"`
	LastTicketHash    string         `json:"last_ticket_hash"`
	Hash              string         `json:"hash"`
	Signature         Signature      `json:"signature"`
	ClosedBy          string         `json:"closed_by"`
	ClosedAt          time.Time      `json:"closed_at"`
}
