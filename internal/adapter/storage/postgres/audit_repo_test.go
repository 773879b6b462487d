package postgres

import (
	"context"
	"testing"
	"time"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_CreateAndCreateTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		TenantID:   &tenantID,
		Event:      domain.AuditTicketCreated,
		EntityType: "ticket",
		EntityID:   "20250120-E01-R01-000001",
		Actor:      "seller-7",
		After:      []byte(`{"status":"completed"}`),
		Metadata:   map[string]any{"register_id": "r1"},
		Origin:     "10.0.0.1",
		CreatedAt:  time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(entry.ID, entry.TenantID, "TICKET_CREATED", "ticket", entry.EntityID, "seller-7",
			[]byte(nil), []byte(entry.After), pgxmock.AnyArg(), "10.0.0.1", entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_log").WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewAuditRepo(mock)
	require.NoError(t, repo.Create(context.Background(), entry))

	dbTx, _ := mock.Begin(context.Background())
	require.NoError(t, repo.CreateTx(context.Background(), dbTx, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}
