package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rsrini-dev/vectorrank/internal/analytics"
	"github.com/rsrini-dev/vectorrank/internal/index"
	"github.com/rsrini-dev/vectorrank/internal/search/cache"
	"github.com/rsrini-dev/vectorrank/internal/search/executor"
	"github.com/rsrini-dev/vectorrank/internal/search/handler"
	"github.com/rsrini-dev/vectorrank/internal/weighting"
	"github.com/rsrini-dev/vectorrank/pkg/config"
	"github.com/rsrini-dev/vectorrank/pkg/health"
	"github.com/rsrini-dev/vectorrank/pkg/kafka"
	"github.com/rsrini-dev/vectorrank/pkg/logger"
	"github.com/rsrini-dev/vectorrank/pkg/metrics"
	"github.com/rsrini-dev/vectorrank/pkg/middleware"
	"github.com/rsrini-dev/vectorrank/pkg/postgres"
	pkgredis "github.com/rsrini-dev/vectorrank/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ranking service", "port", cfg.Server.Port)

	// A load failure is fatal: no partial index is ever served.
	store, err := index.Load(cfg.Index.DocumentsFile, cfg.Index.TermsFile, cfg.Index.PostingsFile)
	if err != nil {
		slog.Error("failed to load index", "error", err)
		os.Exit(1)
	}
	stats := weighting.New(store)
	slog.Info("index loaded",
		"documents", store.DocumentCount(),
		"terms", store.TermCount(),
	)

	var m *metrics.Metrics
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.IndexDocuments.Set(float64(store.DocumentCount()))
		m.IndexTerms.Set(float64(store.TermCount()))
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)
	slog.Info("analytics pipeline started", "topic", cfg.Kafka.Topics.QueryEvents)

	var pgClient *postgres.Client
	pgClient, err = postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
		pgClient = nil
	} else {
		defer pgClient.Close()
		snapStore := analytics.NewStore(pgClient)
		if prev, err := snapStore.LatestSnapshot(ctx); err != nil {
			slog.Warn("failed to load analytics snapshot", "error", err)
		} else if prev != nil {
			aggregator.Seed(*prev)
			slog.Info("analytics restored from snapshot", "total_queries", prev.TotalQueries)
		}
		go snapStore.SnapshotLoop(ctx, aggregator, cfg.Postgres.SnapshotInterval)
		slog.Info("analytics snapshots enabled", "interval", cfg.Postgres.SnapshotInterval)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if store.DocumentCount() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents, %d terms", store.DocumentCount(), store.TermCount()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "empty index"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if pgClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := pgClient.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	exec := executor.New(store, stats)
	h := handler.New(exec, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("ranking service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ranking service stopped")
}
