package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/hashchain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/core/pricing"
	"pos-fiscal-ledger/internal/metrics"
	"pos-fiscal-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const defaultIdempotencyTTL = 24 * time.Hour

// LedgerOptions carries the ledger settings shared by the writing services.
type LedgerOptions struct {
	Location       *time.Location
	IdempotencyTTL time.Duration
}

func (o LedgerOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	registers  ports.RegisterRepository
	tickets    ports.TicketRepository
	closures   ports.ClosureRepository
	stock      ports.StockRepository
	transactor ports.DBTransactor
	sequencer  *TicketSequencer
	signer     ports.Signer
	audit      ports.AuditService
	idempCache ports.IdempotencyCache
	clock      ports.Clock
	loc        *time.Location
	idempTTL   time.Duration
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. idempCache may be nil.
func NewLedgerService(
	registers ports.RegisterRepository,
	tickets ports.TicketRepository,
	closures ports.ClosureRepository,
	stock ports.StockRepository,
	transactor ports.DBTransactor,
	signer ports.Signer,
	audit ports.AuditService,
	idempCache ports.IdempotencyCache,
	clock ports.Clock,
	opts LedgerOptions,
	log zerolog.Logger,
) *LedgerServiceImpl {
	ttl := opts.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &LedgerServiceImpl{
		registers:  registers,
		tickets:    tickets,
		closures:   closures,
		stock:      stock,
		transactor: transactor,
		sequencer:  NewTicketSequencer(tickets),
		signer:     signer,
		audit:      audit,
		idempCache: idempCache,
		clock:      clock,
		loc:        opts.location(),
		idempTTL:   ttl,
		log:        log,
	}
}

// RecordSale prices, numbers, chains, signs and persists one sale. Everything
// from the register lock to the audit entry happens in a single transaction.
func (s *LedgerServiceImpl) RecordSale(ctx context.Context, req ports.SaleRequest) (*domain.Ticket, error) {
	ticket, err := s.recordSale(ctx, req)
	if err != nil {
		recordRejection(ctx, s.audit, "record_sale", req.TenantID, "register", req.RegisterID.String(), req.SellerID, req.Origin, err)
		return nil, err
	}
	return ticket, nil
}

func (s *LedgerServiceImpl) recordSale(ctx context.Context, req ports.SaleRequest) (*domain.Ticket, error) {
	if strings.TrimSpace(req.SellerID) == "" {
		return nil, apperror.Validation("seller_id is required")
	}
	if hashchain.ContainsReserved(req.SellerID) {
		return nil, apperror.Validation(fmt.Sprintf("seller_id must not contain any of %q", hashchain.Reserved))
	}

	priced, err := pricing.Compute(req.Lines, req.Discount)
	if err != nil {
		return nil, pricingError(err)
	}

	payments, err := normalizePayments(req.Payments)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 && !priced.Totals.TTC.IsZero() {
		return nil, apperror.ErrPaymentRequired()
	}

	// Layer 1: Redis idempotency check
	idempKey := saleIdempotencyKey(req)
	if cached := s.cachedSale(ctx, idempKey); cached != nil {
		return cached, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Per-register serialization point
	register, err := s.registers.GetForUpdate(ctx, dbTx, req.TenantID, req.RegisterID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lock register: %w", err))
	}
	if register == nil || !register.BelongsTo(req.TenantID) || !register.Active {
		return nil, apperror.ErrRegisterInvalid()
	}
	if req.EstablishmentID != uuid.Nil && req.EstablishmentID != register.EstablishmentID {
		return nil, apperror.ErrRegisterInvalid()
	}

	est, err := s.registers.GetEstablishment(ctx, dbTx, req.TenantID, register.EstablishmentID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get establishment: %w", err))
	}
	if est == nil || !est.Active {
		return nil, apperror.ErrEstablishmentInvalid()
	}

	soldAt := hashchain.Normalize(s.clock.Now())
	day := domain.BusinessDay(soldAt, s.loc)

	closed, err := s.closures.Exists(ctx, dbTx, register.ID, day)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("check closure: %w", err))
	}
	if closed {
		return nil, apperror.ErrDayAlreadyClosed()
	}

	previous, found, err := s.tickets.LastHash(ctx, dbTx, register.ID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("last hash: %w", err))
	}
	if !found {
		previous = hashchain.FirstTicket
	}

	ordinals, err := s.registers.Ordinals(ctx, dbTx, register)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("ordinals: %w", err))
	}

	number, err := s.sequencer.Next(ctx, dbTx, req.TenantID, day, ordinals)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:                   uuid.New(),
		TenantID:             req.TenantID,
		Number:               number.String(),
		EstablishmentID:      est.ID,
		RegisterID:           register.ID,
		EstablishmentOrdinal: ordinals.Establishment,
		RegisterOrdinal:      ordinals.Register,
		SellerID:             req.SellerID,
		CustomerID:           req.CustomerID,
		SoldAt:               soldAt,
		Totals:               priced.Totals,
		Discount:             req.Discount,
		Lines:                priced.Lines,
		Payments:             payments,
		PreviousHash:         previous,
		Status:               domain.TicketStatusCompleted,
	}
	ticket.CurrentHash = hashchain.TicketDigest(ticket)
	ticket.Signature = s.signer.Sign(ticket.CurrentHash)

	if err := s.tickets.Create(ctx, dbTx, ticket); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create ticket: %w", err))
	}

	if err := s.adjustStock(ctx, dbTx, est.ID, ticket, true); err != nil {
		return nil, err
	}

	tenantID := req.TenantID
	s.audit.RecordTx(ctx, dbTx, &domain.AuditEntry{
		TenantID:   &tenantID,
		Event:      domain.AuditTicketCreated,
		EntityType: "ticket",
		EntityID:   ticket.Number,
		Actor:      req.SellerID,
		After:      auditPayload(ticket),
		Metadata: map[string]any{
			"register_id":    register.ID.String(),
			"total_ttc":      hashchain.Amount(ticket.Totals.TTC),
			"signature_kind": string(ticket.Signature.Kind),
		},
		Origin: req.Origin,
	})

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	s.cacheSale(ctx, idempKey, ticket)
	metrics.RecordTicket()

	s.log.Info().
		Str("ticket_number", ticket.Number).
		Str("register_id", register.ID.String()).
		Str("total_ttc", hashchain.Amount(ticket.Totals.TTC)).
		Msg("sale recorded")

	return ticket, nil
}

// CancelTicket marks a ticket cancelled and restores its stock. The number
// and every hashed field are kept; status is not part of the digest.
func (s *LedgerServiceImpl) CancelTicket(ctx context.Context, req ports.CancelRequest) (*domain.Ticket, error) {
	ticket, err := s.cancelTicket(ctx, req)
	if err != nil {
		recordRejection(ctx, s.audit, "cancel_ticket", req.TenantID, "ticket", req.TicketNumber, req.Actor, req.Origin, err)
		return nil, err
	}
	return ticket, nil
}

func (s *LedgerServiceImpl) cancelTicket(ctx context.Context, req ports.CancelRequest) (*domain.Ticket, error) {
	if req.TicketNumber == "" {
		return nil, apperror.Validation("ticket_number is required")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperror.Validation("cancellation reason is required")
	}

	found, err := s.tickets.GetByNumber(ctx, req.TenantID, req.TicketNumber)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get ticket: %w", err))
	}
	if found == nil {
		return nil, apperror.ErrTicketNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if _, err := s.registers.GetForUpdate(ctx, dbTx, req.TenantID, found.RegisterID); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lock register: %w", err))
	}

	// Re-read under the lock: a closure may have stamped it in between.
	ticket, err := s.tickets.GetByNumber(ctx, req.TenantID, req.TicketNumber)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("reload ticket: %w", err))
	}
	if ticket == nil {
		return nil, apperror.ErrTicketNotFound()
	}
	if ticket.IsClosed() {
		return nil, apperror.ErrTicketClosed()
	}
	if ticket.Status == domain.TicketStatusCancelled {
		return nil, apperror.ErrTicketAlreadyCancelled()
	}

	before := struct {
		Status domain.TicketStatus `json:"status"`
	}{ticket.Status}

	cancelledAt := hashchain.Normalize(s.clock.Now())
	if err := s.tickets.MarkCancelled(ctx, dbTx, ticket.ID, cancelledAt, reason); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("mark cancelled: %w", err))
	}
	ticket.Status = domain.TicketStatusCancelled
	ticket.CancelledAt = &cancelledAt
	ticket.CancelReason = &reason

	if err := s.adjustStock(ctx, dbTx, ticket.EstablishmentID, ticket, false); err != nil {
		return nil, err
	}

	tenantID := req.TenantID
	s.audit.RecordTx(ctx, dbTx, &domain.AuditEntry{
		TenantID:   &tenantID,
		Event:      domain.AuditTicketCancelled,
		EntityType: "ticket",
		EntityID:   ticket.Number,
		Actor:      req.Actor,
		Before:     auditPayload(before),
		After: auditPayload(struct {
			Status domain.TicketStatus `json:"status"`
			Reason string              `json:"reason"`
		}{ticket.Status, reason}),
		Metadata: map[string]any{"register_id": ticket.RegisterID.String()},
		Origin:   req.Origin,
	})

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	metrics.RecordCancellation()
	s.log.Info().
		Str("ticket_number", ticket.Number).
		Str("register_id", ticket.RegisterID.String()).
		Str("actor", req.Actor).
		Msg("ticket cancelled")

	return ticket, nil
}

// GetTicket returns a ticket of the tenant by number.
func (s *LedgerServiceImpl) GetTicket(ctx context.Context, tenantID uuid.UUID, number string) (*domain.Ticket, error) {
	t, err := s.tickets.GetByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get ticket: %w", err))
	}
	if t == nil {
		return nil, apperror.ErrTicketNotFound()
	}
	return t, nil
}

// adjustStock decrements (sale) or restores (cancellation) stock for every line.
// A missing stock record is skipped.
func (s *LedgerServiceImpl) adjustStock(ctx context.Context, tx pgx.Tx, establishmentID uuid.UUID, t *domain.Ticket, sale bool) error {
	for _, line := range t.Lines {
		delta := line.Quantity
		if sale {
			delta = delta.Neg()
		}
		ok, err := s.stock.Adjust(ctx, tx, establishmentID, line.ProductID, delta)
		if err != nil {
			return apperror.ErrPersistence(fmt.Errorf("adjust stock for %s: %w", line.ProductID, err))
		}
		if !ok {
			s.log.Warn().
				Str("ticket_number", t.Number).
				Str("product_id", line.ProductID).
				Str("establishment_id", establishmentID.String()).
				Msg("no stock record, stock update skipped")
		}
	}
	return nil
}

func (s *LedgerServiceImpl) cachedSale(ctx context.Context, key string) *domain.Ticket {
	if key == "" || s.idempCache == nil {
		return nil
	}
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, processing sale")
		return nil
	}
	if cached == nil {
		return nil
	}

	var t domain.Ticket
	if err := json.Unmarshal(cached, &t); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("unreadable idempotency entry, processing sale")
		return nil
	}
	s.log.Info().Str("ticket_number", t.Number).Str("key", key).Msg("sale replayed from idempotency cache")
	return &t
}

func (s *LedgerServiceImpl) cacheSale(ctx context.Context, key string, t *domain.Ticket) {
	if key == "" || s.idempCache == nil {
		return
	}
	b, err := json.Marshal(t)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal ticket for idempotency cache")
		return
	}
	if err := s.idempCache.Set(ctx, key, b, s.idempTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency in redis")
	}
}

func saleIdempotencyKey(req ports.SaleRequest) string {
	if req.IdempotencyKey == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", req.TenantID, req.RegisterID, req.IdempotencyKey)
}

// normalizePayments drops zero-amount tenders and rounds to cents.
func normalizePayments(in []domain.Payment) ([]domain.Payment, error) {
	out := make([]domain.Payment, 0, len(in))
	for _, p := range in {
		if p.Method == "" {
			return nil, apperror.Validation("payment method is required")
		}
		if hashchain.ContainsReserved(string(p.Method)) {
			return nil, apperror.Validation(fmt.Sprintf("payment method must not contain any of %q", hashchain.Reserved))
		}
		if p.Amount.IsNegative() {
			return nil, apperror.Validation(fmt.Sprintf("payment amount for %s must not be negative", p.Method))
		}
		if p.Amount.IsZero() {
			continue
		}
		out = append(out, domain.Payment{Method: p.Method, Amount: p.Amount.Round(2)})
	}
	return out, nil
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrNoLines):
		return apperror.ErrEmptyCart()
	case errors.Is(err, pricing.ErrDiscountExceedsTotal):
		return apperror.ErrDiscountExceedsTotal()
	default:
		return apperror.Validation(err.Error())
	}
}
