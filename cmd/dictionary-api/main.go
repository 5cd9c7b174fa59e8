package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/worklog-dictionaries/internal/apiserver"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/persistence"
	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/repository"
	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos apiserver.Repositories
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = apiserver.Repositories{
			Users:         repository.NewUserRepository(pool),
			Catering:      repository.NewVendorRepository(pool, "catering_companies"),
			Accommodation: repository.NewVendorRepository(pool, "accommodation_companies"),
			Teams:         repository.NewTeamRepository(pool),
			Members:       repository.NewMemberRepository(pool),
		}
	} else {
		logger.Warn("running with in-memory storage; data is lost on exit")
		store := repository.NewMemoryStore()
		repos = apiserver.Repositories{
			Users:         store.Users(),
			Catering:      store.Vendors("catering"),
			Accommodation: store.Vendors("accommodation"),
			Teams:         store.Teams(),
			Members:       store.Members(),
		}
	}

	if err := apiserver.SeedAdmin(ctx, cfg.Auth, repos.Users, logger); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := apiserver.New(cfg, repos, logger, metrics)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
