package memory

import (
	"context"
	"strings"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ---- Registers ----

type registerRepo struct{ s *Store }

// NewRegisterRepository creates a memory-backed ports.RegisterRepository.
func NewRegisterRepository(s *Store) ports.RegisterRepository {
	return &registerRepo{s: s}
}

func (r *registerRepo) GetByID(_ context.Context, tenantID, registerID uuid.UUID) (*domain.Register, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reg, ok := r.s.registers[registerID]
	if !ok || reg.TenantID != tenantID {
		return nil, nil
	}
	return &reg, nil
}

func (r *registerRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, tenantID, registerID uuid.UUID) (*domain.Register, error) {
	t, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	reg, ok := r.s.registers[registerID]
	r.s.mu.RUnlock()
	if !ok || reg.TenantID != tenantID {
		return nil, nil
	}
	if err := t.lockRow(ctx, registerID); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) GetEstablishment(_ context.Context, tx pgx.Tx, tenantID, establishmentID uuid.UUID) (*domain.Establishment, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.establishments[establishmentID]
	if !ok || e.TenantID != tenantID {
		return nil, nil
	}
	return &e, nil
}

// Ordinals assigns a missing establishment or register number as one past the
// highest among its peers, under a tenant or establishment lock held until the
// transaction ends. Assignments are staged and only stick on commit.
func (r *registerRepo) Ordinals(ctx context.Context, tx pgx.Tx, reg *domain.Register) (domain.Ordinals, error) {
	t, err := asTx(r.s, tx)
	if err != nil {
		return domain.Ordinals{}, err
	}

	est, err := r.ordinal(ctx, t, establishmentOrdinal, reg.EstablishmentID, reg.TenantID, func(id uuid.UUID) bool {
		e, ok := r.s.establishments[id]
		return ok && e.TenantID == reg.TenantID
	})
	if err != nil {
		return domain.Ordinals{}, err
	}
	rank, err := r.ordinal(ctx, t, registerOrdinal, reg.ID, reg.EstablishmentID, func(id uuid.UUID) bool {
		other, ok := r.s.registers[id]
		return ok && other.EstablishmentID == reg.EstablishmentID
	})
	if err != nil {
		return domain.Ordinals{}, err
	}
	return domain.Ordinals{Establishment: est, Register: rank}, nil
}

// ordinal returns id's number, assigning the next free one among peers when
// neither committed state nor the transaction chain holds it. lockID guards
// the peer group. peer is called with the store's read lock held.
func (r *registerRepo) ordinal(ctx context.Context, t *Tx, kind ordinalKind, id, lockID uuid.UUID, peer func(uuid.UUID) bool) (int, error) {
	if n, ok := r.lookupOrdinal(t, kind, id); ok {
		return n, nil
	}
	if err := t.lockRow(ctx, lockID); err != nil {
		return 0, err
	}
	if n, ok := r.lookupOrdinal(t, kind, id); ok {
		return n, nil
	}

	highest := 0
	r.s.mu.RLock()
	for other, n := range r.s.ordinals(kind) {
		if n > highest && peer(other) {
			highest = n
		}
	}
	for p := t; p != nil; p = p.parent {
		for other, n := range p.pending(kind) {
			if n > highest && peer(other) {
				highest = n
			}
		}
	}
	r.s.mu.RUnlock()

	next := highest + 1
	t.pending(kind)[id] = next
	t.stage(func(s *Store) error {
		m := s.ordinals(kind)
		if _, taken := m[id]; taken {
			return ErrDuplicate
		}
		m[id] = next
		return nil
	})
	return next, nil
}

func (r *registerRepo) lookupOrdinal(t *Tx, kind ordinalKind, id uuid.UUID) (int, bool) {
	for p := t; p != nil; p = p.parent {
		if n, ok := p.pending(kind)[id]; ok {
			return n, true
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.ordinals(kind)[id]
	return n, ok
}

// ---- Tickets ----

type ticketRepo struct{ s *Store }

// NewTicketRepository creates a memory-backed ports.TicketRepository.
func NewTicketRepository(s *Store) ports.TicketRepository {
	return &ticketRepo{s: s}
}

func ticketKey(tenantID uuid.UUID, number string) string {
	return tenantID.String() + "|" + number
}

func (r *ticketRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Ticket) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	staged := cloneTicket(*t)
	mt.stage(func(s *Store) error {
		key := ticketKey(staged.TenantID, staged.Number)
		if _, dup := s.ticketIndex[key]; dup {
			return ErrDuplicate
		}
		staged.Seq = int64(len(s.tickets) + 1)
		s.ticketIndex[key] = len(s.tickets)
		s.tickets = append(s.tickets, staged)
		return nil
	})
	return nil
}

func (r *ticketRepo) LastHash(_ context.Context, tx pgx.Tx, registerID uuid.UUID) (string, bool, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return "", false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.tickets) - 1; i >= 0; i-- {
		if r.s.tickets[i].RegisterID == registerID {
			return r.s.tickets[i].CurrentHash, true, nil
		}
	}
	return "", false, nil
}

func (r *ticketRepo) MaxSequence(_ context.Context, tx pgx.Tx, tenantID uuid.UUID, prefix string) (int, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	highest := 0
	for _, t := range r.s.tickets {
		if t.TenantID != tenantID || !strings.HasPrefix(t.Number, prefix) {
			continue
		}
		seq, err := domain.ParseSequenceSuffix(strings.TrimPrefix(t.Number, prefix))
		if err == nil && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

func (r *ticketRepo) GetByNumber(_ context.Context, tenantID uuid.UUID, number string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.ticketIndex[ticketKey(tenantID, number)]
	if !ok {
		return nil, nil
	}
	t := cloneTicket(r.s.tickets[i])
	return &t, nil
}

func (r *ticketRepo) MarkCancelled(_ context.Context, tx pgx.Tx, ticketID uuid.UUID, at time.Time, reason string) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	mt.stage(func(s *Store) error {
		for i := range s.tickets {
			if s.tickets[i].ID == ticketID {
				when, why := at, reason
				s.tickets[i].Status = domain.TicketStatusCancelled
				s.tickets[i].CancelledAt = &when
				s.tickets[i].CancelReason = &why
				return nil
			}
		}
		return nil
	})
	return nil
}

func (r *ticketRepo) ListForDay(_ context.Context, tx pgx.Tx, registerID uuid.UUID, from, to time.Time) ([]domain.Ticket, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if t.RegisterID == registerID && inRange(t.SoldAt, &from, &to) {
			out = append(out, cloneTicket(t))
		}
	}
	return out, nil
}

func (r *ticketRepo) StampClosure(_ context.Context, tx pgx.Tx, registerID uuid.UUID, from, to time.Time, closureID uuid.UUID, closedAt time.Time) (int64, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return 0, err
	}

	r.s.mu.RLock()
	var n int64
	for _, t := range r.s.tickets {
		if t.RegisterID == registerID && t.ClosureID == nil && inRange(t.SoldAt, &from, &to) {
			n++
		}
	}
	r.s.mu.RUnlock()

	mt.stage(func(s *Store) error {
		for i := range s.tickets {
			t := &s.tickets[i]
			if t.RegisterID == registerID && t.ClosureID == nil && inRange(t.SoldAt, &from, &to) {
				id, at := closureID, closedAt
				t.ClosureID = &id
				t.ClosedAt = &at
			}
		}
		return nil
	})
	return n, nil
}

func (r *ticketRepo) ListForVerification(_ context.Context, f ports.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if t.TenantID != f.TenantID {
			continue
		}
		if f.RegisterID != nil && t.RegisterID != *f.RegisterID {
			continue
		}
		if !inRange(t.SoldAt, f.From, f.To) {
			continue
		}
		out = append(out, cloneTicket(t))
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *ticketRepo) HashBefore(_ context.Context, registerID uuid.UUID, seq int64) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.tickets) - 1; i >= 0; i-- {
		t := r.s.tickets[i]
		if t.Seq < seq && t.RegisterID == registerID {
			return t.CurrentHash, true, nil
		}
	}
	return "", false, nil
}

// ---- Closures ----

type closureRepo struct{ s *Store }

// NewClosureRepository creates a memory-backed ports.ClosureRepository.
func NewClosureRepository(s *Store) ports.ClosureRepository {
	return &closureRepo{s: s}
}

func dateKey(registerID uuid.UUID, d time.Time) closureKey {
	return closureKey{registerID: registerID, date: d.Format(hashchain.DateLayout)}
}

func (r *closureRepo) Exists(_ context.Context, tx pgx.Tx, registerID uuid.UUID, businessDate time.Time) (bool, error) {
	if _, err := asTx(r.s, tx); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.closures[dateKey(registerID, businessDate)]
	return ok, nil
}

func (r *closureRepo) Create(_ context.Context, tx pgx.Tx, c *domain.Closure) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	staged := *c
	staged.PaymentTotals = append([]domain.PaymentTotal(nil), c.PaymentTotals...)
	mt.stage(func(s *Store) error {
		key := dateKey(staged.RegisterID, staged.BusinessDate)
		if _, dup := s.closures[key]; dup {
			return ErrDuplicate
		}
		s.closures[key] = staged
		return nil
	})
	return nil
}

func (r *closureRepo) GetByRegisterDate(_ context.Context, tenantID, registerID uuid.UUID, businessDate time.Time) (*domain.Closure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.closures[dateKey(registerID, businessDate)]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	return &c, nil
}

// ---- Stock ----

type stockRepo struct{ s *Store }

// NewStockRepository creates a memory-backed ports.StockRepository.
func NewStockRepository(s *Store) ports.StockRepository {
	return &stockRepo{s: s}
}

func (r *stockRepo) Adjust(_ context.Context, tx pgx.Tx, establishmentID uuid.UUID, productID string, delta decimal.Decimal) (bool, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return false, err
	}
	key := stockKey{establishmentID, productID}
	r.s.mu.RLock()
	_, ok := r.s.stock[key]
	r.s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	mt.stage(func(s *Store) error {
		s.stock[key] = s.stock[key].Add(delta)
		return nil
	})
	return true, nil
}

// ---- Audit ----

type auditRepo struct{ s *Store }

// NewAuditRepository creates a memory-backed ports.AuditRepository.
func NewAuditRepository(s *Store) ports.AuditRepository {
	return &auditRepo{s: s}
}

func (r *auditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

func (r *auditRepo) CreateTx(_ context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	staged := *entry
	mt.stage(func(s *Store) error {
		s.audit = append(s.audit, staged)
		return nil
	})
	return nil
}

// ---- helpers ----

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Lines = append([]domain.LineItem(nil), t.Lines...)
	t.Payments = append([]domain.Payment(nil), t.Payments...)
	return t
}
