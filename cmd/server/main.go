// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"taskhub/internal/audit"
	audithandler "taskhub/internal/audit/handler"
	auditrelay "taskhub/internal/audit/relay"
	auditmemory "taskhub/internal/audit/store/memory"
	auditpostgres "taskhub/internal/audit/store/postgres"
	authhandler "taskhub/internal/auth/handler"
	"taskhub/internal/auth/password"
	"taskhub/internal/auth/revocation"
	authservice "taskhub/internal/auth/service"
	"taskhub/internal/auth/token"
	"taskhub/internal/authz"
	authzmetrics "taskhub/internal/authz/metrics"
	"taskhub/internal/directory"
	organizationhandler "taskhub/internal/organization/handler"
	organizationservice "taskhub/internal/organization/service"
	organizationstore "taskhub/internal/organization/store"
	"taskhub/internal/platform/config"
	"taskhub/internal/platform/httpserver"
	"taskhub/internal/platform/logger"
	platformmetrics "taskhub/internal/platform/metrics"
	platformredis "taskhub/internal/platform/redis"
	taskhandler "taskhub/internal/task/handler"
	taskservice "taskhub/internal/task/service"
	taskstore "taskhub/internal/task/store"
	httptransport "taskhub/internal/transport/http"
	userhandler "taskhub/internal/user/handler"
	userservice "taskhub/internal/user/service"
	userstore "taskhub/internal/user/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Entity stores fall back to memory when no database is configured so
	// the service stays runnable in development.
	var users userservice.Store = userstore.NewInMemoryStore()
	var orgs organizationservice.Store = organizationstore.NewInMemoryStore()
	var tasks taskservice.Store = taskstore.NewInMemoryStore()
	var auditStore audit.Store = auditmemory.New()

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := applySchema(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgresStore(db)
		orgs = organizationstore.NewPostgresStore(db)
		tasks = taskstore.NewPostgresStore(db)

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to create audit pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, auditpostgres.Schema); err != nil {
			log.Error("failed to apply audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = auditpostgres.New(pool)
	}

	var revocationList revocation.List = revocation.NewMemoryList()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocationList = revocation.NewRedisList(redisClient.Client)
	}

	var relay audit.Relay
	var kafkaRelay *auditrelay.Kafka
	if len(cfg.KafkaBrokers) > 0 {
		kafkaRelay, err = auditrelay.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaRelay.Close()
		relay = kafkaRelay
	}

	hasher := password.NewHasher()
	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenLifetime, revocationList)

	userSvc := userservice.New(users, hasher)
	orgSvc := organizationservice.New(orgs, users)
	taskSvc := taskservice.New(tasks)
	authSvc := authservice.New(userSvc, users, hasher, tokens)

	resolver := authz.NewResolver(directory.New(users))
	authorizer := authz.NewAuthorizer(resolver, log, authzmetrics.New())
	recorder := audit.NewRecorder(auditStore, relay, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Metrics:    platformmetrics.New(),
		Recorder:   recorder,
		Verifier:   tokens,
		Authorizer: authorizer,

		Auth:          authhandler.New(authSvc, log),
		Users:         userhandler.New(userSvc, log),
		Organizations: organizationhandler.New(orgSvc, log),
		Tasks:         taskhandler.New(taskSvc, log),
		AuditLogs:     audithandler.New(auditStore, log),

		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting taskhub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if kafkaRelay != nil {
		g.Go(func() error {
			if err := kafkaRelay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func applySchema(ctx context.Context, db *sql.DB) error {
	for _, schema := range []string{
		organizationstore.Schema,
		userstore.Schema,
		taskstore.Schema,
	} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}
