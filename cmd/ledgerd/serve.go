package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpHandler "pos-fiscal-ledger/internal/adapter/http/handler"
	"pos-fiscal-ledger/internal/adapter/http/middleware"
	"pos-fiscal-ledger/internal/adapter/storage/memory"
	redisStorage "pos-fiscal-ledger/internal/adapter/storage/redis"
	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/service"
	"pos-fiscal-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var storage string
	var noRedis bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if storage == "" {
				storage = a.cfg.Ledger.Storage
			}
			return a.serve(cmd.Context(), storage, !noRedis)
		},
	}
	cmd.Flags().StringVar(&storage, "storage", "", "ledger storage: postgres or memory (default from ledger.storage)")
	cmd.Flags().BoolVar(&noRedis, "no-redis", false, "run without Redis: no sale idempotency cache, in-process rate limits")
	return cmd
}

func (a *app) serve(ctx context.Context, storage string, useRedis bool) error {
	cfg, log := a.cfg, a.log
	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", storage).
		Msg("Starting fiscal ledger")

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, storage, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	checkers := []ports.HealthChecker{be.health}
	var idempCache ports.IdempotencyCache
	deps := httpHandler.RouterDeps{Mode: cfg.Server.Mode, CORSOrigins: cfg.Server.CORSOrigins, Logger: log}

	if useRedis {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without idempotency cache, rate limits are per instance")
		} else {
			defer rdb.Close()
			idempCache = redisStorage.NewIdempotencyCache(rdb)
			deps.RateLimitStore = redisStorage.NewRateLimitStore(rdb)
			checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
		}
	}

	if deps.RateLimitStore == nil {
		deps.RateLimitStore = middleware.NewLocalLimiter()
	}

	signer, err := service.NewHMACSigner(cfg.Signing.Key, cfg.Signing.KeyID, log)
	if err != nil {
		return fmt.Errorf("signing key: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	clock := service.SystemClock{}
	opts := service.LedgerOptions{Location: loc, IdempotencyTTL: cfg.Ledger.IdempotencyTTL}
	auditSvc := service.NewAuditService(be.audit, clock, logger.Component(log, "audit"))
	archive := service.NewArchiveNotifier(cfg.Archive.URL, cfg.Archive.Secret,
		&http.Client{Timeout: cfg.Archive.Timeout}, logger.Component(log, "archive"))

	deps.LedgerSvc = service.NewLedgerService(
		be.registers, be.tickets, be.closures, be.stock, be.transactor,
		signer, auditSvc, idempCache, clock, opts, logger.Component(log, "ledger"),
	)
	deps.ClosureSvc = service.NewClosureService(
		be.registers, be.tickets, be.closures, be.transactor,
		signer, auditSvc, archive, clock, opts, logger.Component(log, "closure"),
	)
	deps.VerifySvc = service.NewVerificationService(be.tickets, auditSvc, clock, opts,
		cfg.Ledger.VerifyMaxTickets, logger.Component(log, "verifier"))
	deps.TokenSvc = tokenSvc
	deps.AuditSvc = auditSvc
	deps.HealthCheckers = checkers

	if be.memory != nil {
		if err := seedMemory(be.memory, tokenSvc, a); err != nil {
			return err
		}
	}

	router := httpHandler.SetupRouter(deps)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// seedMemory provisions one establishment and register in an empty memory
// store and logs a manager token for them.
func seedMemory(store *memory.Store, tokens ports.TokenService, a *app) error {
	tenantID := uuid.New()
	est := domain.Establishment{ID: uuid.New(), TenantID: tenantID, Name: "Demo shop", Active: true}
	reg := domain.Register{ID: uuid.New(), TenantID: tenantID, EstablishmentID: est.ID, Name: "Till 1", Active: true}
	store.AddEstablishment(est)
	store.AddRegister(reg)

	token, expiry, err := tokens.Generate(ports.OperatorClaims{
		TenantID:   tenantID,
		OperatorID: "demo-manager",
		Role:       ports.RoleManager,
	})
	if err != nil {
		return fmt.Errorf("mint demo token: %w", err)
	}

	a.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("establishment_id", est.ID.String()).
		Str("register_id", reg.ID.String()).
		Time("token_expiry", expiry).
		Str("token", token).
		Msg("memory storage seeded")
	return nil
}
