package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/datalinea/dataspace-backend/api/routes"
	"github.com/datalinea/dataspace-backend/internal/approvals"
	"github.com/datalinea/dataspace-backend/internal/audit"
	"github.com/datalinea/dataspace-backend/internal/drafts"
	"github.com/datalinea/dataspace-backend/internal/grants"
	"github.com/datalinea/dataspace-backend/internal/requests"
	"github.com/datalinea/dataspace-backend/pkg/bigquery"
	"github.com/datalinea/dataspace-backend/pkg/config"
	"github.com/datalinea/dataspace-backend/pkg/db"
	"github.com/datalinea/dataspace-backend/pkg/logger"
	"github.com/datalinea/dataspace-backend/pkg/metrics"
	"github.com/datalinea/dataspace-backend/pkg/migrate"
	"github.com/datalinea/dataspace-backend/pkg/outbox"
	"github.com/datalinea/dataspace-backend/pkg/pubsub"
	"github.com/datalinea/dataspace-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	bigqueryClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}

	auditRecorder, err := audit.NewRecorder(bigqueryClient, cfg.BigQuery.GovernanceEventsTable, audit.RetryPolicy{}, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	transitionMetrics := metrics.NewTransitionMetrics(registry)

	grantsService, err := grants.NewService(grants.NewGovernanceRepository(dbClient.DB()), cfg.Grants.DefaultDurationDays)
	if err != nil {
		logg.Error(context.Background(), "failed to create grants service", err)
		os.Exit(1)
	}

	approvalsService, err := approvals.NewService(approvals.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create approvals service", err)
		os.Exit(1)
	}

	draftsService, err := drafts.NewService(redisClient, cfg.Drafts.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create drafts service", err)
		os.Exit(1)
	}

	requestsService, err := requests.NewService(requests.ServiceParams{
		Repo:      requests.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Grants:    grantsService,
		Approvals: approvalsService,
		Outbox:    outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Audit:     auditRecorder,
		Metrics:   transitionMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create requests service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			bigqueryClient,
			requestsService,
			grantsService,
			draftsService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
