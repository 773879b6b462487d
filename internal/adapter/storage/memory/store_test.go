package memory

import (
	"context"
	"testing"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*Store, *domain.Register) {
	t.Helper()
	s := NewStore()
	tenantID := uuid.New()
	est := domain.Establishment{ID: uuid.New(), TenantID: tenantID, Name: "Main", Active: true}
	reg := domain.Register{ID: uuid.New(), TenantID: tenantID, EstablishmentID: est.ID, Name: "Till 1", Active: true}
	s.AddEstablishment(est)
	s.AddRegister(reg)
	return s, &reg
}

func ticket(reg *domain.Register, number string, at time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:              uuid.New(),
		TenantID:        reg.TenantID,
		Number:          number,
		EstablishmentID: reg.EstablishmentID,
		RegisterID:      reg.ID,
		SellerID:        "seller",
		SoldAt:          at,
		Lines:           []domain.LineItem{{Position: 1, ProductID: "SKU-1", Quantity: decimal.NewFromInt(1)}},
		CurrentHash:     "hash-" + number,
		Status:          domain.TicketStatusCompleted,
	}
}

func TestTx_CommitAppliesStagedWrites(t *testing.T) {
	s, reg := seed(t)
	repo := NewTicketRepository(s)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, ticket(reg, "A-000001", day.Add(time.Hour))))

	got, err := repo.GetByNumber(ctx, reg.TenantID, "A-000001")
	require.NoError(t, err)
	assert.Nil(t, got, "uncommitted writes are invisible")

	require.NoError(t, tx.Commit(ctx))
	got, err = repo.GetByNumber(ctx, reg.TenantID, "A-000001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.Seq)
}

func TestTx_RollbackDiscards(t *testing.T) {
	s, reg := seed(t)
	repo := NewTicketRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	require.NoError(t, repo.Create(ctx, tx, ticket(reg, "A-000001", day)))
	require.NoError(t, tx.Rollback(ctx))
	assert.ErrorIs(t, tx.Commit(ctx), pgx.ErrTxClosed)

	got, _ := repo.GetByNumber(ctx, reg.TenantID, "A-000001")
	assert.Nil(t, got)
}

func TestTx_SavepointRollbackKeepsOuterWrites(t *testing.T) {
	s, reg := seed(t)
	tickets := NewTicketRepository(s)
	audit := NewAuditRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "A-000001", day)))

	sp, err := tx.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, audit.CreateTx(ctx, sp, &domain.AuditEntry{Event: domain.AuditTicketCreated}))
	require.NoError(t, sp.Rollback(ctx))

	require.NoError(t, tx.Commit(ctx))
	got, _ := tickets.GetByNumber(ctx, reg.TenantID, "A-000001")
	assert.NotNil(t, got)
	assert.Empty(t, s.AuditEntries())
}

func TestTx_DuplicateNumberFailsWholeCommit(t *testing.T) {
	s, reg := seed(t)
	tickets := NewTicketRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "A-000001", day)))
	require.NoError(t, tx.Commit(ctx))

	tx, _ = s.Begin(ctx)
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "A-000002", day)))
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "A-000001", day)))
	assert.ErrorIs(t, tx.Commit(ctx), ErrDuplicate)

	got, _ := tickets.GetByNumber(ctx, reg.TenantID, "A-000002")
	assert.Nil(t, got, "partial commit must be undone")
}

func TestTx_RegisterLockSerializes(t *testing.T) {
	s, reg := seed(t)
	registers := NewRegisterRepository(s)
	ctx := context.Background()

	first, _ := s.Begin(ctx)
	_, err := registers.GetForUpdate(ctx, first, reg.TenantID, reg.ID)
	require.NoError(t, err)

	// re-entrant within the same transaction, savepoints included
	sp, _ := first.Begin(ctx)
	_, err = registers.GetForUpdate(ctx, sp, reg.TenantID, reg.ID)
	require.NoError(t, err)

	second, _ := s.Begin(ctx)
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = registers.GetForUpdate(short, second, reg.TenantID, reg.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, first.Rollback(ctx))
	_, err = registers.GetForUpdate(ctx, second, reg.TenantID, reg.ID)
	require.NoError(t, err)
	require.NoError(t, second.Commit(ctx))
}

func TestTx_ForeignTransactionRejected(t *testing.T) {
	s, reg := seed(t)
	other := NewStore()
	tx, _ := other.Begin(context.Background())

	err := NewTicketRepository(s).Create(context.Background(), tx, ticket(reg, "A-000001", day))
	assert.ErrorIs(t, err, ErrForeignTx)
}

func TestRegisterRepository_OrdinalsAreStable(t *testing.T) {
	s, reg := seed(t)
	registers := NewRegisterRepository(s)
	ctx := context.Background()
	tx, _ := s.Begin(ctx)
	defer tx.Rollback(ctx) //nolint:errcheck

	o, err := registers.Ordinals(ctx, tx, reg)
	require.NoError(t, err)
	assert.Equal(t, domain.Ordinals{Establishment: 1, Register: 1}, o)

	// a register whose id sorts first does not renumber the existing one
	s.AddRegister(domain.Register{
		ID: uuid.Nil, TenantID: reg.TenantID, EstablishmentID: reg.EstablishmentID, Active: true,
	})
	again, err := registers.Ordinals(ctx, tx, reg)
	require.NoError(t, err)
	assert.Equal(t, o, again)
}

func TestRegisterRepository_OrdinalFollowsHighestPeer(t *testing.T) {
	s, reg := seed(t)
	registers := NewRegisterRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	first, err := registers.Ordinals(ctx, tx, reg)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, domain.Ordinals{Establishment: 1, Register: 1}, first)

	// added later with an id that sorts first
	later := domain.Register{ID: uuid.Nil, TenantID: reg.TenantID, EstablishmentID: reg.EstablishmentID, Active: true}
	s.AddRegister(later)

	tx, _ = s.Begin(ctx)
	o, err := registers.Ordinals(ctx, tx, &later)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, domain.Ordinals{Establishment: 1, Register: 2}, o)
}

func TestRegisterRepository_RolledBackOrdinalIsNotKept(t *testing.T) {
	s, reg := seed(t)
	registers := NewRegisterRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	_, err := registers.Ordinals(ctx, tx, reg)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	other := domain.Register{ID: uuid.New(), TenantID: reg.TenantID, EstablishmentID: reg.EstablishmentID, Active: true}
	s.AddRegister(other)

	tx, _ = s.Begin(ctx)
	o, err := registers.Ordinals(ctx, tx, &other)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 1, o.Register, "rolled back assignment must not hold number 1")

	tx, _ = s.Begin(ctx)
	o, err = registers.Ordinals(ctx, tx, reg)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 2, o.Register)
}

func TestRegisterRepository_SavepointOrdinalVisibleToParent(t *testing.T) {
	s, reg := seed(t)
	registers := NewRegisterRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	sp, err := tx.Begin(ctx)
	require.NoError(t, err)
	inner, err := registers.Ordinals(ctx, sp, reg)
	require.NoError(t, err)
	require.NoError(t, sp.Commit(ctx))

	outer, err := registers.Ordinals(ctx, tx, reg)
	require.NoError(t, err)
	assert.Equal(t, inner, outer)
	require.NoError(t, tx.Commit(ctx))
}

func TestRegisterRepository_TenantScoped(t *testing.T) {
	s, reg := seed(t)
	registers := NewRegisterRepository(s)
	ctx := context.Background()

	got, err := registers.GetByID(ctx, uuid.New(), reg.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = registers.GetByID(ctx, reg.TenantID, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Name, got.Name)
}

func TestTicketRepository_Queries(t *testing.T) {
	s, reg := seed(t)
	tickets := NewTicketRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "20250119-E01-R01-000001", day.Add(-time.Hour))))
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "20250120-E01-R01-000001", day.Add(time.Hour))))
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "20250120-E01-R01-000002", day.Add(2*time.Hour))))
	require.NoError(t, tx.Commit(ctx))

	tx, _ = s.Begin(ctx)
	defer tx.Rollback(ctx) //nolint:errcheck

	highest, err := tickets.MaxSequence(ctx, tx, reg.TenantID, "20250120-E01-R01-")
	require.NoError(t, err)
	assert.Equal(t, 2, highest)

	last, ok, err := tickets.LastHash(ctx, tx, reg.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hash-20250120-E01-R01-000002", last)

	dayTickets, err := tickets.ListForDay(ctx, tx, reg.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, dayTickets, 2)

	before, ok, err := tickets.HashBefore(ctx, reg.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hash-20250119-E01-R01-000001", before)

	_, ok, err = tickets.HashBefore(ctx, reg.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	from, to := day, day.AddDate(0, 0, 1)
	listed, err := tickets.ListForVerification(ctx, ports.TicketFilter{TenantID: reg.TenantID, From: &from, To: &to, Limit: 1})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "20250120-E01-R01-000001", listed[0].Number)
}

func TestTicketRepository_ReadsAreCopies(t *testing.T) {
	s, reg := seed(t)
	tickets := NewTicketRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "A-000001", day)))
	require.NoError(t, tx.Commit(ctx))

	got, _ := tickets.GetByNumber(ctx, reg.TenantID, "A-000001")
	got.Lines[0].ProductID = "changed"

	again, _ := tickets.GetByNumber(ctx, reg.TenantID, "A-000001")
	assert.Equal(t, "SKU-1", again.Lines[0].ProductID)
}

func TestTicketRepository_StampClosure(t *testing.T) {
	s, reg := seed(t)
	tickets := NewTicketRepository(s)
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "A-000001", day.Add(time.Hour))))
	require.NoError(t, tickets.Create(ctx, tx, ticket(reg, "B-000001", day.AddDate(0, 0, 1).Add(time.Hour))))
	require.NoError(t, tx.Commit(ctx))

	closureID := uuid.New()
	tx, _ = s.Begin(ctx)
	n, err := tickets.StampClosure(ctx, tx, reg.ID, day, day.AddDate(0, 0, 1), closureID, day.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, tx.Commit(ctx))

	a, _ := tickets.GetByNumber(ctx, reg.TenantID, "A-000001")
	b, _ := tickets.GetByNumber(ctx, reg.TenantID, "B-000001")
	require.NotNil(t, a.ClosureID)
	assert.Equal(t, closureID, *a.ClosureID)
	assert.Nil(t, b.ClosureID)
}

func TestClosureRepository_OnePerDay(t *testing.T) {
	s, reg := seed(t)
	closures := NewClosureRepository(s)
	ctx := context.Background()
	c := &domain.Closure{ID: uuid.New(), TenantID: reg.TenantID, RegisterID: reg.ID, BusinessDate: day}

	tx, _ := s.Begin(ctx)
	exists, err := closures.Exists(ctx, tx, reg.ID, day)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, closures.Create(ctx, tx, c))
	require.NoError(t, tx.Commit(ctx))

	tx, _ = s.Begin(ctx)
	exists, _ = closures.Exists(ctx, tx, reg.ID, day)
	assert.True(t, exists)
	require.NoError(t, closures.Create(ctx, tx, c))
	assert.ErrorIs(t, tx.Commit(ctx), ErrDuplicate)

	got, err := closures.GetByRegisterDate(ctx, reg.TenantID, reg.ID, day)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got, err = closures.GetByRegisterDate(ctx, uuid.New(), reg.ID, day)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStockRepository_Adjust(t *testing.T) {
	s, reg := seed(t)
	stock := NewStockRepository(s)
	ctx := context.Background()
	s.SetStock(reg.EstablishmentID, "SKU-1", decimal.NewFromInt(10))

	tx, _ := s.Begin(ctx)
	ok, err := stock.Adjust(ctx, tx, reg.EstablishmentID, "SKU-1", decimal.NewFromInt(-3))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = stock.Adjust(ctx, tx, reg.EstablishmentID, "SKU-404", decimal.NewFromInt(-1))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Commit(ctx))

	q, found := s.Stock(reg.EstablishmentID, "SKU-1")
	assert.True(t, found)
	assert.True(t, q.Equal(decimal.NewFromInt(7)))
}
