package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/procurisk/triage/internal/archive"
	"github.com/procurisk/triage/internal/auth"
	"github.com/procurisk/triage/internal/config"
	"github.com/procurisk/triage/internal/httpserver"
	"github.com/procurisk/triage/internal/metrics"
	"github.com/procurisk/triage/internal/store"
	"github.com/procurisk/triage/internal/stream"
	"github.com/procurisk/triage/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Fatal("ping db", zap.Error(err))
	}

	refs := store.NewPGStore(db)

	pipelineOpts := []triage.Option{
		triage.WithMapperFilter(triage.MapperFilter{
			ByBusinessUnit: cfg.FilterByBusinessUnit,
			ByRegion:       cfg.FilterByRegion,
		}),
	}
	if cfg.ResponseTablePath != "" {
		table, err := triage.LoadResponseTable(cfg.ResponseTablePath)
		if err != nil {
			logger.Fatal("load response table", zap.String("path", cfg.ResponseTablePath), zap.Error(err))
		}
		pipelineOpts = append(pipelineOpts, triage.WithResponseTable(table))
	}
	pipeline := triage.New(refs, pipelineOpts...)

	registry := prometheus.NewRegistry()
	serverOpts := []httpserver.Option{
		httpserver.WithLogger(logger),
		httpserver.WithMetrics(metrics.New(registry), registry),
	}

	if cfg.AuthSecret != "" {
		serverOpts = append(serverOpts, httpserver.WithAuth(auth.NewVerifier(cfg.AuthSecret, cfg.AuthIssuer)))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := stream.NewPublisher(stream.PublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, logger)
		if err != nil {
			logger.Fatal("init kafka publisher", zap.Error(err))
		}
		defer publisher.Close()
		serverOpts = append(serverOpts, httpserver.WithPublisher(publisher))
	}

	if cfg.ArchiveBucket != "" {
		archiver, err := archive.NewS3Archiver(context.Background(), cfg.ArchiveBucket, cfg.ArchivePrefix)
		if err != nil {
			logger.Fatal("init s3 archiver", zap.Error(err))
		}
		serverOpts = append(serverOpts, httpserver.WithArchiver(archiver))
	}

	server := httpserver.New(pipeline, refs, serverOpts...)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("triage service listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, logger)
}

func waitForShutdown(srv *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
