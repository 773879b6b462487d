package domain

import (
	"time"

	"github.com/google/uuid"
)

// BreakReason is the human-readable cause of a broken link.
type BreakReason string

const (
	BreakPreviousHash BreakReason = "previous hash mismatch"
	BreakHash         BreakReason = "hash mismatch"
)

// VerificationScope restricts a chain replay. From and To are inclusive business days.
type VerificationScope struct {
	TenantID   uuid.UUID
	RegisterID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
}

// BrokenLink names one ticket failing verification.
type BrokenLink struct {
	TicketNumber string      `json:"ticket_number"`
	RegisterID   uuid.UUID   `json:"register_id"`
	Reason       BreakReason `json:"reason"`
	Expected     string      `json:"expected"`
	Actual       string      `json:"actual"`
}

// VerificationReport is the outcome of a replay. Breaks are data, not errors.
type VerificationReport struct {
	IsValid           bool         `json:"is_valid"`
	TicketsExamined   int          `json:"tickets_examined"`
	RegistersExamined int          `json:"registers_examined"`
	Truncated         bool         `json:"truncated"`
	BrokenLinks       []BrokenLink `json:"broken_links"`
	VerifiedAt        time.Time    `json:"verified_at"`
}
