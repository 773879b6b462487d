package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is the kind of fiscal event recorded.
type AuditEvent string

const (
	AuditTicketCreated   AuditEvent = "TICKET_CREATED"
	AuditTicketCancelled AuditEvent = "TICKET_CANCELLED"
	AuditDayClosed       AuditEvent = "DAY_CLOSED"
	AuditChainVerified   AuditEvent = "CHAIN_VERIFIED"
	AuditError           AuditEvent = "ERROR"
)

// AuditEntry is one append-only audit record. EntityID is a weak reference.
type AuditEntry struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   *uuid.UUID      `json:"tenant_id,omitempty"`
	Event      AuditEvent      `json:"event"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Origin     string          `json:"origin,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
