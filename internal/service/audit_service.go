package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/metrics"
	"pos-fiscal-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type auditService struct {
	repo  ports.AuditRepository
	clock ports.Clock
	log   zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit entries are only written to the logger.
func NewAuditService(repo ports.AuditRepository, clock ports.Clock, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, clock: clock, log: log}
}

// Record persists entry on its own. Used outside fiscal transactions.
func (s *auditService) Record(ctx context.Context, entry *domain.AuditEntry) {
	s.prepare(entry)
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.lost(entry, err)
	}
}

// RecordTx persists entry inside tx under a savepoint.
func (s *auditService) RecordTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) {
	s.prepare(entry)
	if s.repo == nil {
		return
	}

	sp, err := tx.Begin(ctx)
	if err != nil {
		s.lost(entry, fmt.Errorf("savepoint: %w", err))
		return
	}
	if err := s.repo.CreateTx(ctx, sp, entry); err != nil {
		_ = sp.Rollback(ctx)
		s.lost(entry, err)
		return
	}
	if err := sp.Commit(ctx); err != nil {
		s.lost(entry, fmt.Errorf("release savepoint: %w", err))
	}
}

func (s *auditService) prepare(entry *domain.AuditEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now().UTC()
	}

	s.log.Info().
		Str("event", string(entry.Event)).
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Str("actor", entry.Actor).
		Str("origin", entry.Origin).
		Msg("audit")
}

func (s *auditService) lost(entry *domain.AuditEntry, err error) {
	metrics.RecordAuditWriteFailure()
	s.log.Warn().Err(err).
		Str("event", string(entry.Event)).
		Str("entity_id", entry.EntityID).
		Msg("failed to persist audit entry")
}

// auditPayload marshals v for an entry's before/after fields.
func auditPayload(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// recordRejection writes an ERROR entry for an operation that failed.
func recordRejection(ctx context.Context, audit ports.AuditService, op string, tenantID uuid.UUID, entityType, entityID, actor, origin string, err error) {
	code, reason := "UNKNOWN", err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code, reason = appErr.Code, appErr.Message
	}

	tid := tenantID
	audit.Record(ctx, &domain.AuditEntry{
		TenantID:   &tid,
		Event:      domain.AuditError,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Metadata: map[string]any{
			"operation": op,
			"code":      code,
			"reason":    reason,
		},
		Origin: origin,
	})
}
