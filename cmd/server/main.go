// main wires high-level dependencies, mounts the HTTP surfaces, and keeps
// the server lifecycle small. Business logic lives in internal services.
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
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veriflow/internal/audit"
	"veriflow/internal/identity"
	"veriflow/internal/platform/config"
	"veriflow/internal/platform/httpserver"
	"veriflow/internal/platform/logger"
	"veriflow/internal/platform/metrics"
	"veriflow/internal/platform/middleware"
	"veriflow/internal/platform/redis"
	reviewhandler "veriflow/internal/review/handler"
	reviewservice "veriflow/internal/review/service"
	"veriflow/internal/vault"
	verificationhandler "veriflow/internal/verification/handler"
	verificationservice "veriflow/internal/verification/service"
	"veriflow/internal/verification/store"
	dErrors "veriflow/pkg/domain-errors"
	"veriflow/pkg/platform/httputil"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	httputil.SetDevMode(cfg.DevMode)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx := context.Background()
	m := metrics.New()

	records, appeals, cleanupDB, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanupDB()

	verifier := identity.NewVerifier(cfg.JWTSigningKey, cfg.JWTIssuer)

	var revocation identity.RevocationChecker
	var revocationStore *identity.RedisRevocationStore
	redisClient, err := redis.New(cfg.Redis())
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocationStore = identity.NewRedisRevocationStore(redisClient)
		revocation = revocationStore
		log.Info("token revocation enabled")
	}

	auditSinks := []audit.Sink{audit.NewInMemoryStore()}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		auditSinks = append(auditSinks, kafkaSink)
		log.Info("kafka audit sink enabled", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(log, auditSinks...)

	evidenceVault, err := vault.New(cfg.UploadDir, log)
	if err != nil {
		return err
	}

	workflow := verificationservice.New(records, appeals, evidenceVault,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(publisher),
		verificationservice.WithMetrics(m),
	)
	review := reviewservice.New(records, appeals, log)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(m))

	verificationhandler.New(workflow, evidenceVault, verifier, revocation, log, cfg.MaxRequestBytes).Register(router)
	reviewhandler.New(review, workflow, verifier, revocation, log).Register(router)

	router.Get("/healthz", healthHandler(redisClient))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if cfg.DevMode {
		registerDebugToken(router, verifier, log)
		if revocationStore != nil {
			registerDebugRevoke(router, revocationStore, log)
		}
	}

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting veriflow", "addr", cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// healthHandler reports liveness, pinging optional dependencies when they
// are configured. A dead revocation backend degrades the whole check because
// auth fails closed without it.
func healthHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				httputil.WriteError(w, dErrors.Wrap(dErrors.CodeUnavailable, "redis unreachable", err))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// buildStores selects Postgres when DATABASE_URL is set and falls back to
// the in-memory stores otherwise.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (store.RecordStore, store.AppealStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return store.NewMemoryRecordStore(), store.NewMemoryAppealStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	log.Info("postgres stores ready")
	return store.NewPostgresRecordStore(db), store.NewPostgresAppealStore(db), func() { db.Close() }, nil
}
