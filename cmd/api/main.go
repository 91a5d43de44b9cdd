package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/config"
	"github.com/PrimeSandy/Alpha-Dev/internal/bootstrap"
	"github.com/PrimeSandy/Alpha-Dev/internal/logging"
	recordshttp "github.com/PrimeSandy/Alpha-Dev/internal/records/http"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/idempotency"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/service"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/sweeper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	store, err := bootstrap.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}

	var guard service.IdempotencyGuard
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		guard = idempotency.NewGuard(rdb, cfg.Redis.IdempotencyTTL)
		logger.Info("idempotency enabled", zap.String("redis", cfg.Redis.Addr))
	}

	notifier, err := bootstrap.BuildNotifier(ctx, cfg.Mail, logger)
	if err != nil {
		return err
	}
	dispatcher := service.NewDispatcher(notifier, logger)

	requireUser, err := bootstrap.AuthMiddleware(ctx, cfg.Firebase, logger)
	if err != nil {
		return err
	}

	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		sw = sweeper.New(store, cfg.Sweeper.Schedule, logger)
		if _, err := sw.RunOnce(ctx); err != nil {
			logger.Warn("startup orphan sweep failed", zap.Error(err))
		}
		if err := sw.Start(); err != nil {
			return err
		}
	}

	records := recordshttp.New(recordshttp.Deps{
		Submissions: service.NewSubmissionService(store, dispatcher, guard, logger),
		Projects:    service.NewProjectService(store, logger),
		Bookings:    service.NewBookingService(store, logger),
		Dashboard:   service.NewDashboardService(store, store),
		Logger:      logger,
	})

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  cfg.App.ServiceName,
		Version:      cfg.App.Version,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Store:        store,
		Records:      records,
		RequireUser:  requireUser,
		RequireAdmin: bootstrap.AdminMiddleware(cfg.Admin),
		Log:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("mail", notifier.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	sw.Stop(sctx)
	if err := dispatcher.Wait(sctx); err != nil {
		logger.Warn("notifications still in flight at shutdown", zap.Error(err))
	}
	if err := store.Close(sctx); err != nil {
		logger.Error("close store", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server exited")
	return nil
}
