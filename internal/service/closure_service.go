package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/metrics"
	"pos-fiscal-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ClosureServiceImpl implements ports.ClosureService.
type ClosureServiceImpl struct {
	registers  ports.RegisterRepository
	tickets    ports.TicketRepository
	closures   ports.ClosureRepository
	transactor ports.DBTransactor
	signer     ports.Signer
	audit      ports.AuditService
	archive    ports.ArchiveNotifier
	clock      ports.Clock
	loc        *time.Location
	log        zerolog.Logger
}

// NewClosureService creates a new ClosureServiceImpl. archive may be nil.
func NewClosureService(
	registers ports.RegisterRepository,
	tickets ports.TicketRepository,
	closures ports.ClosureRepository,
	transactor ports.DBTransactor,
	signer ports.Signer,
	audit ports.AuditService,
	archive ports.ArchiveNotifier,
	clock ports.Clock,
	opts LedgerOptions,
	log zerolog.Logger,
) *ClosureServiceImpl {
	return &ClosureServiceImpl{
		registers:  registers,
		tickets:    tickets,
		closures:   closures,
		transactor: transactor,
		signer:     signer,
		audit:      audit,
		archive:    archive,
		clock:      clock,
		loc:        opts.location(),
		log:        log,
	}
}

// CloseDay seals one register for one business day. A second call for the same
// pair fails with AlreadyClosed.
func (s *ClosureServiceImpl) CloseDay(ctx context.Context, req ports.CloseDayRequest) (*domain.Closure, error) {
	closure, err := s.closeDay(ctx, req)
	if err != nil {
		recordRejection(ctx, s.audit, "close_day", req.TenantID, "register", req.RegisterID.String(), req.Operator, req.Origin, err)
		return nil, err
	}
	return closure, nil
}

func (s *ClosureServiceImpl) closeDay(ctx context.Context, req ports.CloseDayRequest) (*domain.Closure, error) {
	if strings.TrimSpace(req.Operator) == "" {
		return nil, apperror.Validation("closing operator is required")
	}

	now := s.clock.Now()
	today := domain.BusinessDay(now, s.loc)
	day := today
	if req.Date != nil {
		y, m, d := req.Date.Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if day.After(today) {
			return nil, apperror.ErrInvalidDate(day.Format(hashchain.DateLayout))
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Same serialization point as sales on this register
	register, err := s.registers.GetForUpdate(ctx, dbTx, req.TenantID, req.RegisterID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lock register: %w", err))
	}
	if register == nil || !register.BelongsTo(req.TenantID) {
		return nil, apperror.ErrRegisterInvalid()
	}

	exists, err := s.closures.Exists(ctx, dbTx, register.ID, day)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("check closure: %w", err))
	}
	if exists {
		return nil, apperror.ErrAlreadyClosed()
	}

	from, to := domain.DayBounds(day, s.loc)
	tickets, err := s.tickets.ListForDay(ctx, dbTx, register.ID, from, to)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("list tickets: %w", err))
	}

	closure := aggregateClosure(tickets)
	closure.ID = uuid.New()
	closure.TenantID = req.TenantID
	closure.EstablishmentID = register.EstablishmentID
	closure.RegisterID = register.ID
	closure.BusinessDate = day
	closure.ClosedBy = req.Operator
	closure.ClosedAt = hashchain.Normalize(now)
	closure.Hash = hashchain.ClosureDigest(closure)
	closure.Signature = s.signer.Sign(closure.Hash)

	if err := s.closures.Create(ctx, dbTx, closure); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create closure: %w", err))
	}

	stamped, err := s.tickets.StampClosure(ctx, dbTx, register.ID, from, to, closure.ID, closure.ClosedAt)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("stamp tickets: %w", err))
	}
	if stamped != int64(len(tickets)) {
		s.log.Warn().
			Str("register_id", register.ID.String()).
			Int64("stamped", stamped).
			Int("in_scope", len(tickets)).
			Msg("stamped ticket count differs from closure scope")
	}

	tenantID := req.TenantID
	s.audit.RecordTx(ctx, dbTx, &domain.AuditEntry{
		TenantID:   &tenantID,
		Event:      domain.AuditDayClosed,
		EntityType: "closure",
		EntityID:   closure.ID.String(),
		Actor:      req.Operator,
		After:      auditPayload(closure),
		Metadata: map[string]any{
			"register_id":     register.ID.String(),
			"date":            day.Format(hashchain.DateLayout),
			"ticket_count":    closure.TicketCount,
			"cancelled_count": closure.CancelledCount,
		},
		Origin: req.Origin,
	})

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	metrics.RecordClosure()
	s.log.Info().
		Str("closure_id", closure.ID.String()).
		Str("register_id", register.ID.String()).
		Str("date", day.Format(hashchain.DateLayout)).
		Int("ticket_count", closure.TicketCount).
		Str("total_ttc", hashchain.Amount(closure.Totals.TTC)).
		Msg("day closed")

	if s.archive != nil {
		if err := s.archive.NotifyClosure(context.WithoutCancel(ctx), closure); err != nil {
			s.log.Error().Err(err).Str("closure_id", closure.ID.String()).Msg("archive notification failed")
		}
	}

	return closure, nil
}

// GetClosure returns the closure of a register for a business date.
func (s *ClosureServiceImpl) GetClosure(ctx context.Context, tenantID, registerID uuid.UUID, businessDate time.Time) (*domain.Closure, error) {
	y, m, d := businessDate.Date()
	c, err := s.closures.GetByRegisterDate(ctx, tenantID, registerID, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get closure: %w", err))
	}
	if c == nil {
		return nil, apperror.ErrClosureNotFound()
	}
	return c, nil
}

// aggregateClosure sums the completed tickets of a day, given in insertion
// order. Cancelled tickets are only counted.
func aggregateClosure(tickets []domain.Ticket) *domain.Closure {
	c := &domain.Closure{
		Totals:         domain.Totals{HT: decimal.Zero, TVA: decimal.Zero, TTC: decimal.Zero},
		LastTicketHash: domain.NoTicketsHash,
	}
	byMethod := make(map[domain.PaymentMethod]decimal.Decimal)

	for i := range tickets {
		t := &tickets[i]
		if !t.IsActive() {
			c.CancelledCount++
			continue
		}

		c.TicketCount++
		c.Totals = c.Totals.Add(t.Totals)
		for _, p := range t.Payments {
			byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
		}
		if c.FirstTicketNumber == "" {
			c.FirstTicketNumber = t.Number
		}
		c.LastTicketNumber = t.Number
		c.LastTicketHash = t.CurrentHash
	}

	c.PaymentTotals = make([]domain.PaymentTotal, 0, len(byMethod))
	for method, amount := range byMethod {
		c.PaymentTotals = append(c.PaymentTotals, domain.PaymentTotal{Method: method, Amount: amount})
	}
	sort.Slice(c.PaymentTotals, func(i, j int) bool {
		return c.PaymentTotals[i].Method < c.PaymentTotals[j].Method
	})
	return c
}
