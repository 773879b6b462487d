package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RegisterRepository reads register and establishment identity.
// GetForUpdate is the per-register serialization point: it must be called inside
// a transaction and holds the register row lock until commit or rollback.
type RegisterRepository interface {
	GetByID(ctx context.Context, tenantID, registerID uuid.UUID) (*domain.Register, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, tenantID, registerID uuid.UUID) (*domain.Register, error)
	GetEstablishment(ctx context.Context, tx pgx.Tx, tenantID, establishmentID uuid.UUID) (*domain.Establishment, error)
	Ordinals(ctx context.Context, tx pgx.Tx, register *domain.Register) (domain.Ordinals, error)
}

// TicketRepository persists tickets, their lines and payments.
type TicketRepository interface {
	// Create inserts the ticket with its lines and payments and sets t.Seq.
	Create(ctx context.Context, tx pgx.Tx, t *domain.Ticket) error
	// LastHash returns the current hash of the register's latest ticket by insertion order.
	LastHash(ctx context.Context, tx pgx.Tx, registerID uuid.UUID) (string, bool, error)
	// MaxSequence returns the highest daily sequence among numbers starting with prefix, 0 if none.
	MaxSequence(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, prefix string) (int, error)
	GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*domain.Ticket, error)
	MarkCancelled(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID, at time.Time, reason string) error
	// ListForDay returns the register's tickets sold in [from, to), ordered by insertion.
	ListForDay(ctx context.Context, tx pgx.Tx, registerID uuid.UUID, from, to time.Time) ([]domain.Ticket, error)
	// StampClosure sets closure_id and closed_at on every unstamped ticket of the register in [from, to).
	StampClosure(ctx context.Context, tx pgx.Tx, registerID uuid.UUID, from, to time.Time, closureID uuid.UUID, closedAt time.Time) (int64, error)
	// ListForVerification returns fully loaded tickets matching filter ordered by insertion.
	ListForVerification(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// HashBefore returns the current hash of the register's ticket inserted immediately before seq.
	HashBefore(ctx context.Context, registerID uuid.UUID, seq int64) (string, bool, error)
}

// TicketFilter selects tickets for a chain replay. From/To bound the sale
// timestamp as [From, To); nil means unbounded. Limit <= 0 means no limit.
type TicketFilter struct {
	TenantID   uuid.UUID
	RegisterID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
}

// ClosureRepository persists daily closures.
type ClosureRepository interface {
	Exists(ctx context.Context, tx pgx.Tx, registerID uuid.UUID, businessDate time.Time) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, c *domain.Closure) error
	GetByRegisterDate(ctx context.Context, tenantID, registerID uuid.UUID, businessDate time.Time) (*domain.Closure, error)
}

// StockRepository adjusts per-establishment stock. Adjust reports false when no
// stock record exists for the product, which callers log and skip.
type StockRepository interface {
	Adjust(ctx context.Context, tx pgx.Tx, establishmentID uuid.UUID, productID string, delta decimal.Decimal) (bool, error)
}

// AuditRepository appends audit entries, inside a transaction or on their own.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	CreateTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
