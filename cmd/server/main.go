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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	authhandler "mintgate/internal/auth/handler"
	authservice "mintgate/internal/auth/service"
	"mintgate/internal/auth/store/nonce"
	"mintgate/internal/auth/store/revocation"
	"mintgate/internal/chain"
	jwttoken "mintgate/internal/jwt_token"
	minthandler "mintgate/internal/mint/handler"
	mintmetrics "mintgate/internal/mint/metrics"
	"mintgate/internal/mint/ports"
	mintservice "mintgate/internal/mint/service"
	"mintgate/internal/mint/store"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/httpserver"
	"mintgate/internal/platform/kafka"
	"mintgate/internal/platform/logger"
	"mintgate/internal/platform/metrics"
	"mintgate/internal/platform/postgres"
	"mintgate/internal/platform/redis"
	ratelimit "mintgate/internal/ratelimit/middleware"
	rlmodels "mintgate/internal/ratelimit/models"
	"mintgate/internal/ratelimit/store/bucket"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/audit/worker"
	"mintgate/pkg/platform/httputil"
	authmw "mintgate/pkg/platform/middleware/auth"
	"mintgate/pkg/platform/middleware/metadata"
	"mintgate/pkg/platform/middleware/request"
	"mintgate/pkg/platform/middleware/requesttime"
)

// ledger is the transaction runner plus the outbox the relay drains.
type ledger interface {
	ports.StoreTx
	audit.Outbox
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		db   *sql.DB
		ldgr ledger
	)
	if cfg.DatabaseURL != "" {
		var err error
		if db, err = postgres.Open(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		runner := store.NewPostgresTxRunner(db, cfg.TxTimeout)
		ldgr = struct {
			ports.StoreTx
			audit.Outbox
		}{runner, runner.Outbox()}
		log.Info("using postgres ledger")
	} else {
		ldgr = store.NewInMemory()
		log.Warn("DATABASE_URL not set; ledger is in memory and lost on exit")
	}

	host, err := chain.New(cfg.Chain.ChainID, cfg.Chain.Controller)
	if err != nil {
		return err
	}
	mint := mintservice.New(ldgr, host,
		mintservice.WithLogger(log),
		mintservice.WithMetrics(mintmetrics.New(reg)),
	)
	if err := bootstrap(ctx, cfg, mint, ldgr, log); err != nil {
		return err
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		if err := rdb.RegisterPoolMetrics(reg); err != nil {
			return err
		}
	}
	challenges, revocations := authStores(rdb, db, reg)

	jwt := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	auth := authservice.New(challenges, revocations, jwt,
		authservice.WithLogger(log),
		authservice.WithChallengeTTL(cfg.Auth.ChallengeTTL),
		authservice.WithTokenTTL(cfg.Auth.TokenTTL),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(request.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(metadata.AccessLog(log))
	router.Use(metrics.New(reg).Middleware)

	router.Get("/health", healthHandler(db, rdb))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	limiter := ratelimit.New(bucketStore(rdb), log, ratelimit.WithDisabled(cfg.RateLimitDisabled))
	authH := authhandler.New(auth, log)
	mintH := minthandler.New(mint, log)
	router.Group(func(r chi.Router) {
		r.Use(limiter.RateLimit(rlmodels.ClassAuth))
		authH.RegisterPublic(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(limiter.RateLimit(rlmodels.ClassRead))
		mintH.RegisterPublic(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireCaller(jwttoken.NewJWTServiceAdapter(jwt), auth, log))
		r.Use(limiter.RateLimitCaller(rlmodels.ClassWrite))
		authH.RegisterProtected(r)
		mintH.RegisterProtected(r)
	})

	srv := httpserver.New(cfg.Addr, router)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting mintgate", "addr", cfg.Addr, "chain_id", cfg.Chain.ChainID.String())
		return httpserver.Run(gctx, srv)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka.EventsTopic, 1, 1); err != nil {
			return err
		}
		relay := worker.NewRelay(ldgr, producer, cfg.Kafka.EventsTopic,
			worker.WithLogger(log),
			worker.WithMetrics(worker.NewMetrics(reg)),
			worker.WithBatchSize(cfg.Kafka.BatchSize),
			worker.WithInterval(cfg.Kafka.PollInterval),
		)
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		log.Warn("KAFKA_BROKERS not set; events stay in the outbox")
	}

	return g.Wait()
}

// bootstrap initializes governance and credits dev balances when configured.
func bootstrap(ctx context.Context, cfg config.Server, mint *mintservice.Service, ldgr ports.StoreTx, log *slog.Logger) error {
	if cfg.Chain.Bootstrap() {
		created, err := mint.Bootstrap(ctx, cfg.Chain.Owner, cfg.Chain.FeeTo, cfg.Chain.Verifier)
		if err != nil {
			return err
		}
		log.Info("governance bootstrap", "initialized", created, "owner", cfg.Chain.Owner.Hex())
	}
	if len(cfg.DevSeed) == 0 {
		return nil
	}
	seed := make([]store.SeedBalance, 0, len(cfg.DevSeed))
	for _, b := range cfg.DevSeed {
		seed = append(seed, store.SeedBalance{Asset: b.Asset, Holder: b.Holder, Amount: b.Amount})
	}
	if err := store.SeedBalances(ctx, ldgr, seed); err != nil {
		return err
	}
	log.Warn("credited development balances", "entries", len(seed))
	return nil
}

// authStores picks shared stores when Redis or Postgres is configured.
func authStores(rdb *redis.Client, db *sql.DB, reg prometheus.Registerer) (authservice.ChallengeStore, authservice.RevocationList) {
	var client *goredis.Client
	if rdb != nil {
		client = rdb.Client
	}
	switch {
	case client != nil:
		return nonce.NewRedis(client), revocation.NewRedisTRL(client, revocation.WithRegisterer(reg))
	case db != nil:
		return nonce.NewInMemory(), revocation.NewPostgresTRL(db)
	default:
		return nonce.NewInMemory(), revocation.NewInMemoryTRL()
	}
}

func bucketStore(rdb *redis.Client) ratelimit.BucketStore {
	if rdb != nil {
		return bucket.NewRedisBucketStore(rdb.Client)
	}
	return bucket.NewInMemoryBucketStore()
}

func healthHandler(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := map[string]string{"status": "ok"}
		status := http.StatusOK
		if db != nil {
			checks["postgres"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				checks["postgres"], checks["status"], status = err.Error(), "degraded", http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Health(ctx); err != nil {
				checks["redis"], checks["status"], status = err.Error(), "degraded", http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, checks)
	}
}
