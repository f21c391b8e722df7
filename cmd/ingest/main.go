package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finx/finx-pharma/internal/client"
	"github.com/finx/finx-pharma/internal/config"
	"github.com/finx/finx-pharma/internal/ingest"
	"github.com/finx/finx-pharma/internal/vectorstore"
	"github.com/finx/finx-pharma/pkg/logger"
	"github.com/finx/finx-pharma/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/ingest.yaml", "path to the YAML config file")
	root := flag.String("root", "", "data root, one subfolder per namespace (overrides ingest.dataRoot)")
	namespace := flag.String("namespace", "", "only ingest this namespace")
	force := flag.Bool("force", false, "re-ingest files already recorded in the ledger")
	watch := flag.Bool("watch", false, "keep running and ingest pdfs as they are added or changed")
	debounce := flag.Duration("debounce", 2*time.Second, "quiet period before a changed pdf is ingested in watch mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	if !cfg.OpenAI.Configured() {
		zapLogger.Fatal("OPENAI_API_KEY is required for ingestion")
	}
	if !cfg.VectorStore.Configured() {
		zapLogger.Fatal("vector store is not configured", zap.String("provider", cfg.VectorStore.Provider))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := vectorstore.New(ctx, cfg.VectorStore, cfg.OpenAI.Timeout, zapLogger)
	if err != nil {
		zapLogger.Fatal("init vector store failed", zap.Error(err))
	}
	defer closeStore()

	embedder := client.NewEmbeddingClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.Timeout, zapLogger)

	opts := []ingest.Option{ingest.WithForce(*force)}
	if cfg.Redis.Configured() {
		redisClient, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			zapLogger.Warn("redis unavailable, ingesting without ledger", zap.Error(err))
		} else {
			defer redisClient.Close()
			opts = append(opts, ingest.WithLedger(ingest.NewRedisLedger(redisClient)))
		}
	}

	dataRoot := cfg.Ingest.DataRoot
	if *root != "" {
		dataRoot = *root
	}

	ingester := ingest.NewIngester(embedder, store, cfg.Ingest, zapLogger, opts...)
	report, err := ingester.Run(ctx, dataRoot, *namespace)
	if err != nil {
		zapLogger.Fatal("ingestion failed", zap.Error(err))
	}

	zapLogger.Info("ingestion complete",
		zap.String("runId", report.RunID),
		zap.Int("pdfsProcessed", report.PDFsProcessed),
		zap.Int("pdfsSkipped", report.PDFsSkipped),
		zap.Int("chunksUploaded", report.ChunksUploaded),
		zap.Strings("namespaces", report.Namespaces))

	if *watch {
		if err := ingester.Watch(ctx, dataRoot, *namespace, *debounce); err != nil {
			zapLogger.Fatal("watch failed", zap.Error(err))
		}
	}
}
