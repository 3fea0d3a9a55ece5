package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scoutbook-labs/badge-tracker/internal/adapters/httpapi"
	memidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/idempotency"
	memscoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/memory/scoutrepo"
	postgres "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres"
	pgidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres/idempotency"
	pgscoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/postgres/scoutrepo"
	"github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite"
	sqliteidempotency "github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite/idempotency"
	sqlitescoutrepo "github.com/scoutbook-labs/badge-tracker/internal/adapters/sqlite/scoutrepo"
	"github.com/scoutbook-labs/badge-tracker/internal/app/roster"
	"github.com/scoutbook-labs/badge-tracker/internal/app/signin"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/auth/jwtverifier"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/auth/session"
	platformclock "github.com/scoutbook-labs/badge-tracker/internal/platform/clock"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/config"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/logging"
	"github.com/scoutbook-labs/badge-tracker/internal/platform/metrics"
	clockport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/clock"
	idempotencyport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/idempotency"
	scoutrepoport "github.com/scoutbook-labs/badge-tracker/internal/ports/out/scoutrepo"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	log := logging.Setup(level)

	if err := run(cfg, log); err != nil {
		log.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	scoutRepo, idemStore, cleanup, err := openBackend(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New()
	svc := roster.NewService(scoutRepo, clk)
	ctrl := roster.NewController(svc, log, m)

	// Auth configuration:
	// - demo: the landing sign-in is a timed placeholder and every request acts as DEV_SUBJECT
	// - jwt: ID tokens are verified against JWT_* and exchanged for a session cookie
	var (
		signIn   *signin.Service
		sessions *session.Manager
		opts     = httpapi.RouterOptions{
			CSRFKey:       []byte(cfg.CSRFKey),
			SecureCookies: cfg.SecureCookies,
			Metrics:       m.Handler(),
			Observe:       m,
			Logger:        log,
		}
	)
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		jwtCfg, err := config.LoadJWTConfig(nil)
		if err != nil {
			return fmt.Errorf("invalid auth config: %w", err)
		}
		sessions = session.NewManager(cfg.SessionSecret, cfg.SessionTTL, clk, cfg.SecureCookies)
		signIn = signin.NewJWTService(jwtverifier.New(jwtCfg), sessions)
		opts.PageAuth = httpapi.NewSessionAuthMiddleware(sessions, httpapi.RedirectToLanding)
		opts.APIAuth = httpapi.NewSessionAuthMiddleware(sessions, httpapi.APIUnauthorized)
	default:
		signIn = signin.NewDemoService(cfg.SignInDelay)
		opts.APIAuth = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
	}

	api := httpapi.NewServer(ctrl, svc, signIn, sessions, idemStore, clk, log)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.NewRouter(api, opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("web listening", "addr", cfg.Addr(), "storage", string(cfg.StorageBackend), "auth", string(cfg.AuthMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openBackend builds the repositories for STORAGE_BACKEND and applies migrations.
func openBackend(ctx context.Context, cfg config.Config, clk clockport.Clock) (scoutrepoport.Repository, idempotencyport.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.BackendURL, postgres.PoolOptions{AccessKey: cfg.BackendAnonKey})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid postgres config: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return pgscoutrepo.NewRepo(pool), pgidempotency.NewStore(pool, clk, cfg.IdempotencyRetention), pool.Close, nil
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.BackendURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return sqlitescoutrepo.NewRepo(db), sqliteidempotency.NewStore(db, clk, cfg.IdempotencyRetention), func() { _ = db.Close() }, nil
	default:
		return memscoutrepo.NewRepo(), memidempotency.NewStore(clk, cfg.IdempotencyRetention), func() {}, nil
	}
}
