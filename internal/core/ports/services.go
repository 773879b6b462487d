package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Operator roles carried in bearer tokens.
const (
	RoleCashier = "cashier"
	RoleManager = "manager"
)

// Clock is the wall-clock source for sale and closure timestamps.
type Clock interface {
	Now() time.Time
}

// Signer turns a digest into a ticket or closure signature.
type Signer interface {
	Sign(digest string) domain.Signature
	// Certified reports whether a certified signing key is provisioned.
	Certified() bool
}

// TokenService handles operator JWT operations.
type TokenService interface {
	Generate(claims OperatorClaims) (string, time.Time, error)
	Validate(tokenString string) (*OperatorClaims, error)
}

// OperatorClaims identifies the authenticated seller or manager.
type OperatorClaims struct {
	TenantID   uuid.UUID
	OperatorID string
	Role       string
}

// IdempotencyCache is the Redis-layer replay guard for sale submissions.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AuditService records fiscal events. Neither method reports failure: a lost
// audit entry is logged and counted, never propagated into the fiscal operation.
type AuditService interface {
	Record(ctx context.Context, entry *domain.AuditEntry)
	// RecordTx writes inside tx under a savepoint so a failed insert cannot abort tx.
	RecordTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry)
}

// ArchiveNotifier hands sealed closures to the external archiving collaborator.
type ArchiveNotifier interface {
	NotifyClosure(ctx context.Context, closure *domain.Closure) error
}

// --- Service Ports (Business Logic) ---

// LedgerService records and cancels tickets.
type LedgerService interface {
	RecordSale(ctx context.Context, req SaleRequest) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, req CancelRequest) (*domain.Ticket, error)
	GetTicket(ctx context.Context, tenantID uuid.UUID, number string) (*domain.Ticket, error)
}

// SaleRequest holds validated input for one sale. EstablishmentID may be
// uuid.Nil, in which case the register's establishment is used.
type SaleRequest struct {
	TenantID        uuid.UUID
	EstablishmentID uuid.UUID
	RegisterID      uuid.UUID
	SellerID        string
	CustomerID      *string
	Lines           []pricing.LineInput
	Payments        []domain.Payment
	Discount        *domain.Discount
	IdempotencyKey  string
	Origin          string
}

// CancelRequest holds input for cancelling a ticket.
type CancelRequest struct {
	TenantID     uuid.UUID
	TicketNumber string
	Reason       string
	Actor        string
	Origin       string
}

// ClosureService seals business days.
type ClosureService interface {
	CloseDay(ctx context.Context, req CloseDayRequest) (*domain.Closure, error)
	GetClosure(ctx context.Context, tenantID, registerID uuid.UUID, businessDate time.Time) (*domain.Closure, error)
}

// CloseDayRequest holds input for a closure. A nil Date means today.
type CloseDayRequest struct {
	TenantID   uuid.UUID
	RegisterID uuid.UUID
	Date       *time.Time
	Operator   string
	Origin     string
}

// VerificationService replays stored chains.
type VerificationService interface {
	VerifyChain(ctx context.Context, req VerifyRequest) (*domain.VerificationReport, error)
}

// VerifyRequest wraps a scope with the requesting identity for the audit trail.
type VerifyRequest struct {
	Scope  domain.VerificationScope
	Actor  string
	Origin string
}
