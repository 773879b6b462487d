package postgres

import (
	"context"
	"errors"
	"fmt"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RegisterRepo implements ports.RegisterRepository.
type RegisterRepo struct {
	pool Pool
}

// NewRegisterRepo creates a new RegisterRepo.
func NewRegisterRepo(pool Pool) *RegisterRepo {
	return &RegisterRepo{pool: pool}
}

const registerColumns = `id, tenant_id, establishment_id, name, active`

// GetByID fetches a register owned by tenantID.
func (r *RegisterRepo) GetByID(ctx context.Context, tenantID, registerID uuid.UUID) (*domain.Register, error) {
	query := `SELECT ` + registerColumns + ` FROM registers WHERE id = $1 AND tenant_id = $2`
	return scanRegister(r.pool.QueryRow(ctx, query, registerID, tenantID))
}

// GetForUpdate fetches a register with a row-level lock (SELECT ... FOR UPDATE).
// Every sale, cancellation and closure on the register queues behind this lock.
func (r *RegisterRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, tenantID, registerID uuid.UUID) (*domain.Register, error) {
	query := `SELECT ` + registerColumns + ` FROM registers WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	return scanRegister(tx.QueryRow(ctx, query, registerID, tenantID))
}

// GetEstablishment fetches an establishment owned by tenantID.
func (r *RegisterRepo) GetEstablishment(ctx context.Context, tx pgx.Tx, tenantID, establishmentID uuid.UUID) (*domain.Establishment, error) {
	query := `SELECT id, tenant_id, name, active FROM establishments WHERE id = $1 AND tenant_id = $2`

	e := &domain.Establishment{}
	err := tx.QueryRow(ctx, query, establishmentID, tenantID).Scan(&e.ID, &e.TenantID, &e.Name, &e.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get establishment: %w", err)
	}
	return e, nil
}

// Ordinals returns the establishment and register numbers used in ticket
// numbers. A missing number is assigned on first use as one past the highest
// among its peers, so numbers are never reused and never change.
// Establishments are serialized per tenant with an advisory lock, registers
// by locking their establishment row.
func (r *RegisterRepo) Ordinals(ctx context.Context, tx pgx.Tx, reg *domain.Register) (domain.Ordinals, error) {
	o, estSet, regSet, err := readOrdinals(ctx, tx, reg.ID)
	if err != nil {
		return domain.Ordinals{}, err
	}
	if estSet && regSet {
		return o, nil
	}

	if !estSet {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, reg.TenantID.String()); err != nil {
			return domain.Ordinals{}, fmt.Errorf("lock tenant ordinals: %w", err)
		}
		const assignEstablishment = `UPDATE establishments SET ordinal = (
				SELECT COALESCE(MAX(ordinal), 0) + 1 FROM establishments WHERE tenant_id = $2)
			WHERE id = $1 AND ordinal IS NULL`
		if _, err := tx.Exec(ctx, assignEstablishment, reg.EstablishmentID, reg.TenantID); err != nil {
			return domain.Ordinals{}, fmt.Errorf("assign establishment ordinal: %w", err)
		}
	}
	if !regSet {
		if _, err := tx.Exec(ctx, `SELECT id FROM establishments WHERE id = $1 FOR UPDATE`, reg.EstablishmentID); err != nil {
			return domain.Ordinals{}, fmt.Errorf("lock establishment: %w", err)
		}
		const assignRegister = `UPDATE registers SET ordinal = (
				SELECT COALESCE(MAX(ordinal), 0) + 1 FROM registers WHERE establishment_id = $2)
			WHERE id = $1 AND ordinal IS NULL`
		if _, err := tx.Exec(ctx, assignRegister, reg.ID, reg.EstablishmentID); err != nil {
			return domain.Ordinals{}, fmt.Errorf("assign register ordinal: %w", err)
		}
	}

	o, estSet, regSet, err = readOrdinals(ctx, tx, reg.ID)
	if err != nil {
		return domain.Ordinals{}, err
	}
	if !estSet || !regSet {
		return domain.Ordinals{}, fmt.Errorf("ordinals missing after assignment for register %s", reg.ID)
	}
	return o, nil
}

// readOrdinals reports 0 for a number not assigned yet.
func readOrdinals(ctx context.Context, tx pgx.Tx, registerID uuid.UUID) (domain.Ordinals, bool, bool, error) {
	var o domain.Ordinals
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(e.ordinal, 0), COALESCE(r.ordinal, 0)
		FROM registers r JOIN establishments e ON e.id = r.establishment_id WHERE r.id = $1`,
		registerID,
	).Scan(&o.Establishment, &o.Register)
	if err != nil {
		return domain.Ordinals{}, false, false, fmt.Errorf("read ordinals: %w", err)
	}
	return o, o.Establishment > 0, o.Register > 0, nil
}

func scanRegister(row pgx.Row) (*domain.Register, error) {
	reg := &domain.Register{}
	err := row.Scan(&reg.ID, &reg.TenantID, &reg.EstablishmentID, &reg.Name, &reg.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan register: %w", err)
	}
	return reg, nil
}
