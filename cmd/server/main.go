package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "namereg/internal/jwt_token"
	"namereg/internal/platform/config"
	"namereg/internal/platform/httpserver"
	"namereg/internal/platform/logger"
	platformredis "namereg/internal/platform/redis"
	"namereg/internal/registry/handler"
	registrymetrics "namereg/internal/registry/metrics"
	"namereg/internal/registry/service"
	"namereg/internal/registry/store/cache"
	domainstore "namereg/internal/registry/store/domain"
	historystore "namereg/internal/registry/store/history"
	ownerstore "namereg/internal/registry/store/owner"
	reservationstore "namereg/internal/registry/store/reservation"
	"namereg/internal/registry/store/schema"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/audit"
	"namereg/pkg/platform/audit/publisher"
	kafkaaudit "namereg/pkg/platform/audit/publishers/kafka"
	auditmemory "namereg/pkg/platform/audit/store/memory"
)

// main wires the registry's dependencies and keeps the server lifecycle
// small. Business logic lives in internal/registry.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap, err := bootstrapIdentity(cfg)
	if err != nil {
		return err
	}

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
	}

	var (
		domains      service.DomainStore
		histories    service.HistoryStore
		reservations service.ReservationStore
		owners       service.OwnerStore
	)

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if err := schema.Apply(ctx, db); err != nil {
			return err
		}
		domains = domainstore.NewPostgres(db)
		histories = historystore.NewPostgres(db)
		reservations = reservationstore.NewPostgres(db)
		owners = ownerstore.NewPostgres(db)
		svcOpts = append(svcOpts, service.WithStoreTx(service.NewSQLStoreTx(db)))
		log.Info("using postgres storage")
	} else {
		domains = domainstore.NewInMemory()
		histories = historystore.NewInMemory()
		reservations = reservationstore.NewInMemory()
		owners = ownerstore.NewInMemory()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		svcOpts = append(svcOpts, service.WithLookupCache(
			cache.NewRedisLookupCache(redisClient.Client, cfg.Redis.LookupTTL),
		))
		log.Info("owner lookup cache enabled")
	}

	auditStore, closeAudit, err := auditSink(cfg, log)
	if err != nil {
		return err
	}
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	)
	svcOpts = append(svcOpts, service.WithAuditPublisher(auditor))

	svc, err := service.New(ctx, domains, histories, reservations, owners, bootstrap, svcOpts...)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	handler.New(svc, jwtService, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting namereg", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		auditor.Close()
		closeAudit()
		return nil
	})

	return g.Wait()
}

// bootstrapIdentity resolves the administrative identity used to initialize
// a fresh registry. On an already-initialized store the persisted identity
// wins, so this may be empty on restart.
func bootstrapIdentity(cfg config.Server) (id.Identity, error) {
	if cfg.AdminIdentity == "" {
		return id.NilIdentity, nil
	}
	return id.ParseIdentity(cfg.AdminIdentity)
}

func auditSink(cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, keeping audit events in memory")
		return auditmemory.NewInMemoryStore(), func() {}, nil
	}
	sink, err := kafkaaudit.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events published to kafka", "topic", cfg.Kafka.Topic)
	return sink, sink.Close, nil
}
