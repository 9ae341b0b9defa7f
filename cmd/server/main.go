// main wires the process: config, storage, cache, audit pipeline, services,
// and the HTTP server. Business logic lives in the internal packages; this
// file only connects them and manages the lifecycle.
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

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"amlcase/internal/assessment"
	assessmentmetrics "amlcase/internal/assessment/metrics"
	"amlcase/internal/audit"
	"amlcase/internal/casefile"
	casefilemetrics "amlcase/internal/casefile/metrics"
	"amlcase/internal/jwtauth"
	"amlcase/internal/platform/config"
	"amlcase/internal/platform/httpserver"
	"amlcase/internal/platform/kafka"
	"amlcase/internal/platform/logger"
	platformmetrics "amlcase/internal/platform/metrics"
	platformredis "amlcase/internal/platform/redis"
	"amlcase/internal/records"
	recordsmetrics "amlcase/internal/records/metrics"
	"amlcase/internal/scoring"
	httptransport "amlcase/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Storage. Without DATABASE_URL everything runs on in-memory stores,
	// which is enough for local development.
	var db *sql.DB
	factStore := records.Store(records.NewInMemoryStore())
	assessmentStore := assessment.Store(assessment.NewInMemoryStore())
	caseStore := casefile.Store(casefile.NewInMemoryStore())
	auditStore := audit.Store(audit.NewInMemoryStore())

	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		factStore = records.NewPostgresStore(db)
		assessmentStore = assessment.NewPostgresStore(db)
		caseStore = casefile.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}

	kafkaPublisher, err := kafka.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}

	auditPub := audit.NewPublisher(auditStore, audit.WithLogger(log))

	policy := scoring.DefaultPolicy().WithExtraGeoPatterns(cfg.ExtraWatchlist)
	jwtService := jwtauth.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	var scoreCache *assessment.ScoreCache
	if redisClient != nil {
		scoreCache = assessment.NewScoreCache(redisClient.Client, cfg.Redis.ScoreTTL)
	}

	assessmentService := assessment.NewService(
		assessmentStore, factStore, scoreCache, policy, auditPub, log, assessmentmetrics.New(),
	)
	caseService := casefile.NewService(
		caseStore, factStore, assessmentService, auditPub, log, casefilemetrics.New(),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		TokenValidator: jwtService,
		HTTPMetrics:    platformmetrics.New(),
		Records:        records.NewHandler(factStore, auditPub, log, recordsmetrics.New()),
		Assessment:     assessment.NewHandler(assessmentService, log),
		Casefile:       casefile.NewHandler(caseService, log),
		DB:             db,
		Redis:          redisClient,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting amlcase server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Outbox relay ships audit events to Kafka when both backends exist.
	if db != nil && kafkaPublisher != nil {
		relay := audit.NewRelay(db, kafkaPublisher, log)
		group.Go(func() error {
			err := relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if kafkaPublisher != nil {
			kafkaPublisher.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if db != nil {
			_ = db.Close()
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
