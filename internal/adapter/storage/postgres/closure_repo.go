package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClosureRepo implements ports.ClosureRepository. Business dates travel as
// YYYY-MM-DD text so the session time zone never shifts them.
type ClosureRepo struct {
	pool Pool
}

// NewClosureRepo creates a new ClosureRepo.
func NewClosureRepo(pool Pool) *ClosureRepo {
	return &ClosureRepo{pool: pool}
}

// Exists reports whether the register is already closed for businessDate.
func (r *ClosureRepo) Exists(ctx context.Context, tx pgx.Tx, registerID uuid.UUID, businessDate time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM closures WHERE register_id = $1 AND business_date = $2::date)`

	var exists bool
	if err := tx.QueryRow(ctx, query, registerID, businessDate.Format(hashchain.DateLayout)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check closure exists: %w", err)
	}
	return exists, nil
}

// Create inserts a closure within a database transaction.
func (r *ClosureRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Closure) error {
	paymentTotals, err := json.Marshal(c.PaymentTotals)
	if err != nil {
		return fmt.Errorf("marshal payment totals: %w", err)
	}

	query := `INSERT INTO closures (id, tenant_id, establishment_id, register_id, business_date,
		ticket_count, cancelled_count, total_ht, total_tva, total_ttc, payment_totals,
		first_ticket_number, last_ticket_number, last_ticket_hash, hash,
		signature_kind, signature_value, signature_key_id, closed_by, closed_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err = tx.Exec(ctx, query,
		c.ID, c.TenantID, c.EstablishmentID, c.RegisterID, c.BusinessDate.Format(hashchain.DateLayout),
		c.TicketCount, c.CancelledCount,
		c.Totals.HT.StringFixed(2), c.Totals.TVA.StringFixed(2), c.Totals.TTC.StringFixed(2), paymentTotals,
		c.FirstTicketNumber, c.LastTicketNumber, c.LastTicketHash, c.Hash,
		string(c.Signature.Kind), c.Signature.Value, c.Signature.KeyID, c.ClosedBy, c.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("insert closure: %w", err)
	}
	return nil
}

// GetByRegisterDate fetches the closure of a register for one business day.
func (r *ClosureRepo) GetByRegisterDate(ctx context.Context, tenantID, registerID uuid.UUID, businessDate time.Time) (*domain.Closure, error) {
	query := `SELECT id, tenant_id, establishment_id, register_id, business_date::text,
		ticket_count, cancelled_count, total_ht::text, total_tva::text, total_ttc::text, payment_totals,
		first_ticket_number, last_ticket_number, last_ticket_hash, hash,
		signature_kind, signature_value, signature_key_id, closed_by, closed_at
		FROM closures WHERE tenant_id = $1 AND register_id = $2 AND business_date = $3::date`

	c := &domain.Closure{}
	var (
		date, ht, tva, ttc, sigKind string
		paymentTotals               []byte
	)
	err := r.pool.QueryRow(ctx, query, tenantID, registerID, businessDate.Format(hashchain.DateLayout)).Scan(
		&c.ID, &c.TenantID, &c.EstablishmentID, &c.RegisterID, &date,
		&c.TicketCount, &c.CancelledCount, &ht, &tva, &ttc, &paymentTotals,
		&c.FirstTicketNumber, &c.LastTicketNumber, &c.LastTicketHash, &c.Hash,
		&sigKind, &c.Signature.Value, &c.Signature.KeyID, &c.ClosedBy, &c.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get closure: %w", err)
	}

	if c.BusinessDate, err = time.Parse(hashchain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("decode business date: %w", err)
	}
	if c.Totals, err = parseTotals(ht, tva, ttc); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(paymentTotals, &c.PaymentTotals); err != nil {
		return nil, fmt.Errorf("decode payment totals: %w", err)
	}
	c.Signature.Kind = domain.SignatureKind(sigKind)
	c.ClosedAt = c.ClosedAt.UTC()
	return c, nil
}
