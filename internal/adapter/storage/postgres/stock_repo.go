package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StockRepo implements ports.StockRepository.
type StockRepo struct {
	pool Pool
}

// NewStockRepo creates a new StockRepo.
func NewStockRepo(pool Pool) *StockRepo {
	return &StockRepo{pool: pool}
}

// Adjust adds delta to the product's quantity. It reports false when the
// establishment has no stock record for the product.
func (r *StockRepo) Adjust(ctx context.Context, tx pgx.Tx, establishmentID uuid.UUID, productID string, delta decimal.Decimal) (bool, error) {
	query := `UPDATE stock SET quantity = quantity + $1::numeric, updated_at = NOW()
		WHERE establishment_id = $2 AND product_id = $3`

	tag, err := tx.Exec(ctx, query, delta.String(), establishmentID, productID)
	if err != nil {
		return false, fmt.Errorf("adjust stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
