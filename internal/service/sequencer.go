package service

import (
	"context"
	"fmt"
	"time"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TicketSequencer assigns daily ticket numbers. It is only gap-free when the
// caller holds the register lock for tx, so two callers never read the same
// maximum.
type TicketSequencer struct {
	tickets ports.TicketRepository
}

// NewTicketSequencer creates a sequencer backed by the ticket store.
func NewTicketSequencer(tickets ports.TicketRepository) *TicketSequencer {
	return &TicketSequencer{tickets: tickets}
}

// Next returns the number following the highest one already issued for the
// register on day. day is the business day as midnight UTC.
func (s *TicketSequencer) Next(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, day time.Time, ordinals domain.Ordinals) (domain.TicketNumber, error) {
	prefix := domain.TicketPrefix(day, ordinals)

	highest, err := s.tickets.MaxSequence(ctx, tx, tenantID, prefix)
	if err != nil {
		return domain.TicketNumber{}, apperror.ErrPersistence(fmt.Errorf("max sequence for %s: %w", prefix, err))
	}
	if highest >= domain.MaxTicketSequence {
		return domain.TicketNumber{}, apperror.ErrSequenceExhausted()
	}

	return domain.TicketNumber{
		Date:     day,
		Ordinals: ordinals,
		Sequence: highest + 1,
	}, nil
}
