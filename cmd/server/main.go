package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/trackback-blockchain/plug-blockchain/internal/jwt_token"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/events"
	ledgerhandler "github.com/trackback-blockchain/plug-blockchain/internal/ledger/handler"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/metrics"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/ports"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/service"
	"github.com/trackback-blockchain/plug-blockchain/internal/ledger/store"
	assetstore "github.com/trackback-blockchain/plug-blockchain/internal/ledger/store/asset"
	balancestore "github.com/trackback-blockchain/plug-blockchain/internal/ledger/store/balance"
	"github.com/trackback-blockchain/plug-blockchain/internal/platform/config"
	"github.com/trackback-blockchain/plug-blockchain/internal/platform/httpserver"
	"github.com/trackback-blockchain/plug-blockchain/internal/platform/kafka"
	"github.com/trackback-blockchain/plug-blockchain/internal/platform/logger"
	"github.com/trackback-blockchain/plug-blockchain/internal/platform/middleware"
	platformredis "github.com/trackback-blockchain/plug-blockchain/internal/platform/redis"
	httptransport "github.com/trackback-blockchain/plug-blockchain/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New("ledger")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthChecker{}

	var (
		assets   ports.AssetStore
		balances ports.BalanceStore
		atomic   ports.Atomic
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		assets = assetstore.NewPostgres(db, cfg.Ledger.ReservedThreshold)
		balances = balancestore.NewPostgres(db)
		atomic = store.NewSQLAtomic(db)
		checks["postgres"] = httptransport.HealthFunc(db.PingContext)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		assets = assetstore.NewInMemory(cfg.Ledger.ReservedThreshold)
		balances = balancestore.NewInMemory()
		atomic = store.NewMutexAtomic()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		balances = balancestore.NewCache(balances, redisClient.Client, balancestore.WithCacheLogger(log))
		checks["redis"] = redisClient
		log.Info("balance cache enabled")
	}

	g, ctx := errgroup.WithContext(ctx)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer producer.Close()

		dispatcher := events.NewDispatcher(256, log)
		publisher := events.NewKafkaPublisher(producer, log)
		g.Go(func() error {
			if err := dispatcher.Run(ctx, publisher); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		opts = append(opts, service.WithPublisher(dispatcher))
		log.Info("event publishing enabled", "topic", cfg.Kafka.Topic)
	}

	svc := service.New(service.Config{
		StakingAssetID:    cfg.Ledger.StakingAssetID,
		SpendingAssetID:   cfg.Ledger.SpendingAssetID,
		ReservedThreshold: cfg.Ledger.ReservedThreshold,
	}, assets, balances, atomic, opts...)

	router := httptransport.NewRouter(httptransport.Deps{
		Ledger:    ledgerhandler.New(svc, log),
		Tokens:    jwttoken.NewJWTService(cfg.JWTSigningKey, "ledger", "ledger"),
		RateLimit: middleware.NewRateLimiter(100, time.Minute),
		Checks:    checks,
		Logger:    log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting ledger server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
