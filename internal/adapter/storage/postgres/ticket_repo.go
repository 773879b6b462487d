package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TicketRepo implements ports.TicketRepository. Lines, payments and the global
// discount are stored as JSONB on the ticket row so a ticket is written and
// read in one statement.
type TicketRepo struct {
	pool Pool
}

// NewTicketRepo creates a new TicketRepo.
func NewTicketRepo(pool Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

const ticketColumns = `seq, id, tenant_id, ticket_number, establishment_id, register_id,
	establishment_ordinal, register_ordinal, seller_id, customer_id, sale_timestamp,
	total_ht::text, total_tva::text, total_ttc::text, global_discount, line_items, payments,
	previous_hash, current_hash, signature_kind, signature_value, signature_key_id,
	status, cancelled_at, cancel_reason, closure_id, closed_at`

// Create inserts a ticket within a database transaction and sets t.Seq.
func (r *TicketRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Ticket) error {
	lines, err := json.Marshal(t.Lines)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	payments, err := json.Marshal(t.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	var discount []byte
	if t.Discount != nil {
		if discount, err = json.Marshal(t.Discount); err != nil {
			return fmt.Errorf("marshal discount: %w", err)
		}
	}

	query := `INSERT INTO tickets (id, tenant_id, ticket_number, establishment_id, register_id,
		establishment_ordinal, register_ordinal, seller_id, customer_id, sale_timestamp,
		total_ht, total_tva, total_ttc, global_discount, line_items, payments,
		previous_hash, current_hash, signature_kind, signature_value, signature_key_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING seq`

	err = tx.QueryRow(ctx, query,
		t.ID, t.TenantID, t.Number, t.EstablishmentID, t.RegisterID,
		t.EstablishmentOrdinal, t.RegisterOrdinal, t.SellerID, t.CustomerID, t.SoldAt,
		t.Totals.HT.StringFixed(2), t.Totals.TVA.StringFixed(2), t.Totals.TTC.StringFixed(2),
		discount, lines, payments,
		t.PreviousHash, t.CurrentHash, string(t.Signature.Kind), t.Signature.Value, t.Signature.KeyID,
		string(t.Status),
	).Scan(&t.Seq)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// LastHash returns the current hash of the register's latest ticket.
func (r *TicketRepo) LastHash(ctx context.Context, tx pgx.Tx, registerID uuid.UUID) (string, bool, error) {
	query := `SELECT current_hash FROM tickets WHERE register_id = $1 ORDER BY seq DESC LIMIT 1`
	return scanHash(tx.QueryRow(ctx, query, registerID))
}

// MaxSequence returns the highest six-digit suffix among the tenant's numbers starting with prefix.
func (r *TicketRepo) MaxSequence(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, prefix string) (int, error) {
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(ticket_number FROM $3) AS INTEGER)), 0)
		FROM tickets WHERE tenant_id = $1 AND ticket_number LIKE $2`

	var highest int
	err := tx.QueryRow(ctx, query, tenantID, prefix+"%", len(prefix)+1).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("max ticket sequence: %w", err)
	}
	return highest, nil
}

// GetByNumber fetches a ticket by tenant and number.
func (r *TicketRepo) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE tenant_id = $1 AND ticket_number = $2`

	t, err := scanTicket(r.pool.QueryRow(ctx, query, tenantID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket by number: %w", err)
	}
	return t, nil
}

// MarkCancelled flips a completed ticket to cancelled.
func (r *TicketRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID, at time.Time, reason string) error {
	query := `UPDATE tickets SET status = 'cancelled', cancelled_at = $1, cancel_reason = $2
		WHERE id = $3 AND status = 'completed'`

	tag, err := tx.Exec(ctx, query, at, reason, ticketID)
	if err != nil {
		return fmt.Errorf("cancel ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticket not cancellable: %s", ticketID)
	}
	return nil
}

// ListForDay returns the register's tickets sold in [from, to) in insertion order.
func (r *TicketRepo) ListForDay(ctx context.Context, tx pgx.Tx, registerID uuid.UUID, from, to time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets
		WHERE register_id = $1 AND sale_timestamp >= $2 AND sale_timestamp < $3
		ORDER BY seq`

	rows, err := tx.Query(ctx, query, registerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list day tickets: %w", err)
	}
	return collectTickets(rows)
}

// StampClosure seals every unstamped ticket of the register in [from, to).
func (r *TicketRepo) StampClosure(ctx context.Context, tx pgx.Tx, registerID uuid.UUID, from, to time.Time, closureID uuid.UUID, closedAt time.Time) (int64, error) {
	query := `UPDATE tickets SET closure_id = $1, closed_at = $2
		WHERE register_id = $3 AND sale_timestamp >= $4 AND sale_timestamp < $5 AND closure_id IS NULL`

	tag, err := tx.Exec(ctx, query, closureID, closedAt, registerID, from, to)
	if err != nil {
		return 0, fmt.Errorf("stamp closure: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListForVerification returns the tickets in scope ordered by insertion.
func (r *TicketRepo) ListForVerification(ctx context.Context, f ports.TicketFilter) ([]domain.Ticket, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", argIdx))
	args = append(args, f.TenantID)
	argIdx++

	if f.RegisterID != nil {
		conditions = append(conditions, fmt.Sprintf("register_id = $%d", argIdx))
		args = append(args, *f.RegisterID)
		argIdx++
	}
	if f.From != nil {
		conditions = append(conditions, fmt.Sprintf("sale_timestamp >= $%d", argIdx))
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		conditions = append(conditions, fmt.Sprintf("sale_timestamp < $%d", argIdx))
		args = append(args, *f.To)
		argIdx++
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY seq`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets for verification: %w", err)
	}
	return collectTickets(rows)
}

// HashBefore returns the current hash of the register's ticket inserted right before seq.
func (r *TicketRepo) HashBefore(ctx context.Context, registerID uuid.UUID, seq int64) (string, bool, error) {
	query := `SELECT current_hash FROM tickets WHERE register_id = $1 AND seq < $2 ORDER BY seq DESC LIMIT 1`
	return scanHash(r.pool.QueryRow(ctx, query, registerID, seq))
}

func scanHash(row pgx.Row) (string, bool, error) {
	var hash string
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("scan hash: %w", err)
	}
	return hash, true, nil
}

func collectTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return out, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var (
		ht, tva, ttc              string
		discount, lines, payments []byte
		sigKind, status           string
	)
	err := row.Scan(
		&t.Seq, &t.ID, &t.TenantID, &t.Number, &t.EstablishmentID, &t.RegisterID,
		&t.EstablishmentOrdinal, &t.RegisterOrdinal, &t.SellerID, &t.CustomerID, &t.SoldAt,
		&ht, &tva, &ttc, &discount, &lines, &payments,
		&t.PreviousHash, &t.CurrentHash, &sigKind, &t.Signature.Value, &t.Signature.KeyID,
		&status, &t.CancelledAt, &t.CancelReason, &t.ClosureID, &t.ClosedAt,
	)
	if err != nil {
		return nil, err
	}

	t.SoldAt = t.SoldAt.UTC()
	t.Signature.Kind = domain.SignatureKind(sigKind)
	t.Status = domain.TicketStatus(status)

	if t.Totals, err = parseTotals(ht, tva, ttc); err != nil {
		return nil, err
	}
	if len(discount) > 0 {
		t.Discount = &domain.Discount{}
		if err := json.Unmarshal(discount, t.Discount); err != nil {
			return nil, fmt.Errorf("decode discount: %w", err)
		}
	}
	if err := json.Unmarshal(lines, &t.Lines); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	if err := json.Unmarshal(payments, &t.Payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return t, nil
}

func parseTotals(ht, tva, ttc string) (domain.Totals, error) {
	var out domain.Totals
	var err error
	if out.HT, err = decimal.NewFromString(ht); err != nil {
		return out, fmt.Errorf("decode total_ht: %w", err)
	}
	if out.TVA, err = decimal.NewFromString(tva); err != nil {
		return out, fmt.Errorf("decode total_tva: %w", err)
	}
	if out.TTC, err = decimal.NewFromString(ttc); err != nil {
		return out, fmt.Errorf("decode total_ttc: %w", err)
	}
	return out, nil
}
