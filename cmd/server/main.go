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

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	adminsvc "chaincomply/internal/admin"
	adminhandler "chaincomply/internal/admin/handler"
	"chaincomply/internal/assessment"
	"chaincomply/internal/assessment/evaluator"
	assessmenthandler "chaincomply/internal/assessment/handler"
	assessmentmetrics "chaincomply/internal/assessment/metrics"
	"chaincomply/internal/assessment/profile"
	assessmentstore "chaincomply/internal/assessment/store"
	"chaincomply/internal/audit"
	auditkafka "chaincomply/internal/audit/kafka"
	auditstore "chaincomply/internal/audit/store"
	authhandler "chaincomply/internal/auth/handler"
	authservice "chaincomply/internal/auth/service"
	sessionstore "chaincomply/internal/auth/store/session"
	userstore "chaincomply/internal/auth/store/user"
	httpapi "chaincomply/internal/http"
	jwttoken "chaincomply/internal/jwt_token"
	"chaincomply/internal/platform/config"
	"chaincomply/internal/platform/httpserver"
	"chaincomply/internal/platform/logger"
	platformmetrics "chaincomply/internal/platform/metrics"
	platformredis "chaincomply/internal/platform/redis"
	"chaincomply/internal/registration"
	registrationhandler "chaincomply/internal/registration/handler"
	registrationmetrics "chaincomply/internal/registration/metrics"
	regstore "chaincomply/internal/registration/store"
)

const (
	tokenIssuer   = "chaincomply"
	tokenAudience = "chaincomply-portal"

	shutdownTimeout = 10 * time.Second
)

// main wires stores, services, and transport, then runs the server and the
// audit outbox worker until a termination signal arrives. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores default to in-memory; Postgres and Redis replace them when
	// configured so a bare binary still runs for local development.
	var (
		users     authservice.UserStore         = userstore.New()
		regs      registration.Store            = regstore.NewMemory()
		snapshots assessmentstore.SnapshotStore = assessmentstore.NewMemory()
		auditLog  audit.Store                   = auditstore.NewMemory()
	)

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		pgUsers := userstore.NewPostgres(db)
		pgRegs := regstore.NewPostgres(db)
		pgSnapshots := assessmentstore.NewPostgres(pool)
		pgAudit := auditstore.NewPostgres(db)
		for _, migrate := range []func(context.Context) error{
			pgUsers.Migrate, pgRegs.Migrate, pgSnapshots.Migrate, pgAudit.Migrate,
		} {
			if err := migrate(ctx); err != nil {
				return err
			}
		}

		users, regs, snapshots, auditLog = pgUsers, pgRegs, pgSnapshots, pgAudit
		log.Info("postgres stores enabled")
	}

	var sessions authservice.SessionStore = sessionstore.New()
	if rdb, err := platformredis.New(cfg.Redis); err != nil {
		return err
	} else if rdb != nil {
		defer rdb.Close()
		sessions = sessionstore.NewRedis(rdb.Client)
		log.Info("redis session store enabled")
	}

	auditor := audit.NewPublisher(auditLog)

	registry, err := evaluator.Catalog()
	if err != nil {
		return err
	}

	assessor, err := assessment.New(registry, profile.Defaults(), snapshots,
		assessment.WithLogger(log),
		assessment.WithMetrics(assessmentmetrics.New()),
		assessment.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, tokenIssuer, tokenAudience)

	authSvc := authservice.New(users, sessions, tokens,
		authservice.WithLogger(log),
		authservice.WithMetrics(platformmetrics.New()),
		authservice.WithAuditPublisher(auditor),
	)

	regMetrics := registrationmetrics.New()
	regSvc := registration.New(regs, assessor,
		registration.WithLogger(log),
		registration.WithMetrics(regMetrics),
		registration.WithAuditPublisher(auditor),
	)
	adminSvc := adminsvc.New(regs, snapshots,
		adminsvc.WithLogger(log),
		adminsvc.WithMetrics(regMetrics),
		adminsvc.WithAuditPublisher(auditor),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:          authhandler.New(authSvc, log),
		Registrations: registrationhandler.New(regSvc, log),
		Assessments:   assessmenthandler.New(assessor, log),
		Admin:         adminhandler.New(adminSvc, log),
		Tokens:        tokens,
		Sessions:      authSvc,
		Logger:        log,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := auditkafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			auditkafka.WithLogger(log),
		)
		if err != nil {
			return err
		}
		defer publisher.Close()

		if err := publisher.EnsureTopic(ctx, 3, 1); err != nil {
			return err
		}

		worker := audit.NewOutboxWorker(auditLog, publisher, audit.WithWorkerLogger(log))
		group.Go(func() error {
			return worker.Run(ctx)
		})
		log.Info("audit outbox worker started", "topic", cfg.Kafka.AuditTopic)
	}

	group.Go(func() error {
		log.Info("starting chaincomply portal", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
