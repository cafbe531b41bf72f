// Command salesintel-server serves the sales-intel HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/sales-intel/internal/analyzer"
	"github.com/and161185/sales-intel/internal/config"
	"github.com/and161185/sales-intel/internal/limiter"
	"github.com/and161185/sales-intel/internal/logger"
	"github.com/and161185/sales-intel/internal/migrate"
	"github.com/and161185/sales-intel/internal/repository/postgres"
	"github.com/and161185/sales-intel/internal/scraper"
	"github.com/and161185/sales-intel/internal/server/httpapi"
	"github.com/and161185/sales-intel/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	dbWait          = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// main loads configuration, waits for the database, migrates it and serves HTTP until a signal arrives.
func main() {
	addr := flag.String("addr", "", "listen address (overrides SALESINTEL_SERVER_ADDR)")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Server, log *zap.Logger) error {
	db, err := postgres.Connect(ctx, cfg.DSN, dbWait, log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := migrate.Up(ctx, cfg.DSN, log); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	// Repositories
	users := postgres.NewUserRepo(db)
	cache := postgres.NewCacheRepo(db)
	alog := postgres.NewAnalysisRepo(db)
	lim := limiter.NewPG(db.Pool, limiter.DefaultPolicy)

	// Services
	authSvc := service.NewAuthService(users, []byte(cfg.JWTKey), cfg.AccessTTL, lim, log.Named("auth"))
	analysisSvc := service.NewAnalysisService(cache, alog,
		scraper.New(cfg.ScrapeTimeout, cfg.MaxText, log.Named("scraper")),
		analyzer.Heuristic{}, cfg.CacheTTL, cfg.RecentLimitMax, log.Named("analysis"))

	if user, pass, ok, err := cfg.BootstrapCredentials(); err != nil {
		return err
	} else if ok {
		created, err := authSvc.Bootstrap(ctx, user, pass)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			log.Info("bootstrap admin created", zap.String("username", user))
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(authSvc, analysisSvc, log.Named("http")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			_ = srv.Close()
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
