package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AuditRepo implements ports.AuditRepository. The table is append-only.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const insertAudit = `INSERT INTO audit_log (id, tenant_id, event, entity_type, entity_id, actor,
	before, after, metadata, origin, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Create appends an entry outside any fiscal transaction.
func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return insertEntry(ctx, r.pool, entry)
}

// CreateTx appends an entry inside tx.
func (r *AuditRepo) CreateTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	return insertEntry(ctx, tx, entry)
}

func insertEntry(ctx context.Context, db execer, e *domain.AuditEntry) error {
	var metadata []byte
	if len(e.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(e.Metadata); err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	_, err := db.Exec(ctx, insertAudit,
		e.ID, e.TenantID, string(e.Event), e.EntityType, e.EntityID, e.Actor,
		nullJSON(e.Before), nullJSON(e.After), metadata, e.Origin, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func nullJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
