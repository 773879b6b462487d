package main

import (
	"context"
	"fmt"

	"pos-fiscal-ledger/config"
	"pos-fiscal-ledger/internal/adapter/storage/memory"
	pgStorage "pos-fiscal-ledger/internal/adapter/storage/postgres"
	"pos-fiscal-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

// backend is one storage implementation of every repository port.
type backend struct {
	registers  ports.RegisterRepository
	tickets    ports.TicketRepository
	closures   ports.ClosureRepository
	stock      ports.StockRepository
	audit      ports.AuditRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	memory     *memory.Store // set for the memory backend only
	close      func()
}

func openBackend(ctx context.Context, kind string, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch kind {
	case storagePostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return &backend{
			registers:  pgStorage.NewRegisterRepo(pool),
			tickets:    pgStorage.NewTicketRepo(pool),
			closures:   pgStorage.NewClosureRepo(pool),
			stock:      pgStorage.NewStockRepo(pool),
			audit:      pgStorage.NewAuditRepo(pool),
			transactor: pgStorage.NewTransactor(pool),
			health:     pgStorage.NewHealthCheck(pool),
			close:      pool.Close,
		}, nil
	case storageMemory:
		store := memory.NewStore()
		return &backend{
			registers:  memory.NewRegisterRepository(store),
			tickets:    memory.NewTicketRepository(store),
			closures:   memory.NewClosureRepository(store),
			stock:      memory.NewStockRepository(store),
			audit:      memory.NewAuditRepository(store),
			transactor: store,
			health:     store,
			memory:     store,
			close:      func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage %q (want %s or %s)", kind, storagePostgres, storageMemory)
	}
}
