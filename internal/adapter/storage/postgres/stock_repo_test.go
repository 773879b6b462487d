package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockRepo_Adjust(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	estID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE stock SET quantity = quantity \\+ \\$1::numeric").
		WithArgs("-2.5", estID, "SKU-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE stock").
		WithArgs("1", estID, "SKU-404").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, _ := mock.Begin(context.Background())
	repo := NewStockRepo(mock)

	ok, err := repo.Adjust(context.Background(), dbTx, estID, "SKU-1", decimal.RequireFromString("-2.5"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Adjust(context.Background(), dbTx, estID, "SKU-404", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
