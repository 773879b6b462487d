package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"pos-fiscal-ledger/internal/adapter/storage/postgres/migrations"
)

// HealthCheck reports the ledger store unhealthy when it is unreachable or
// when the embedded schema has not been fully applied.
type HealthCheck struct {
	pool Pool
	want int
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool, want: countMigrations(migrations.FS)}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return err
	}
	var applied int
	if err := h.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+migrationTable).Scan(&applied); err != nil {
		return fmt.Errorf("reading %s: %w", migrationTable, err)
	}
	if applied < h.want {
		return fmt.Errorf("schema behind: %d of %d migrations applied, run ledgerd migrate", applied, h.want)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}

func countMigrations(fsys fs.FS) int {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			n++
		}
	}
	return n
}
