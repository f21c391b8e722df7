package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finx/finx-pharma/internal/client"
	"github.com/finx/finx-pharma/internal/config"
	"github.com/finx/finx-pharma/internal/handler"
	"github.com/finx/finx-pharma/internal/service"
	"github.com/finx/finx-pharma/internal/vectorstore"
	"github.com/finx/finx-pharma/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("FINX_CONFIG"), "path to the YAML config file")
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

	zapLogger.Info("finx-server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chatService, closeStore, err := buildChatService(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("init chat service failed", zap.Error(err))
	}
	defer closeStore()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	sessionService := service.NewSessionService(zapLogger)
	r := handler.NewRouter(chatService, sessionService, cfg.Server.Name, cfg.Server.RequestTimeout, zapLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("finx-server listening",
			zap.Int("port", cfg.Server.Port),
			zap.Any("backends", chatService.Backends()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	sessionService.CloseAll()
}

// buildChatService wires the pipeline from config. Missing credentials disable the
// matching collaborator rather than failing startup.
func buildChatService(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (*service.ChatService, func() error, error) {
	closeStore := func() error { return nil }

	var completer service.ChatCompleter
	var knowledge *service.KnowledgeService
	if cfg.OpenAI.Configured() {
		openai := client.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.ChatModel, cfg.OpenAI.Timeout, zapLogger)
		completer = openai
		zapLogger.Info("chat completion enabled",
			zap.String("model", openai.Model()),
			zap.String("baseUrl", cfg.OpenAI.BaseURL))

		if cfg.VectorStore.Configured() {
			store, closeFn, err := vectorstore.New(ctx, cfg.VectorStore, cfg.OpenAI.Timeout, zapLogger)
			if err != nil {
				return nil, closeStore, fmt.Errorf("init vector store: %w", err)
			}
			closeStore = closeFn
			embedder := client.NewEmbeddingClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.Timeout, zapLogger)
			knowledge = service.NewKnowledgeService(embedder, store, cfg.VectorStore.TopK, zapLogger)
		} else {
			zapLogger.Warn("vector store not configured, stored retrieval disabled",
				zap.String("provider", cfg.VectorStore.Provider))
		}
	} else {
		zapLogger.Warn("OPENAI_API_KEY not set, chat replies will report missing configuration")
	}

	var web service.WebSearcher
	if cfg.WebSearch.Configured() {
		web = client.NewExaClient(cfg.WebSearch.APIKey, cfg.WebSearch.BaseURL, cfg.WebSearch.Timeout, zapLogger)
	}

	retrieval := service.NewRetrievalService(knowledge, web, cfg.WebSearch.NumResults, cfg.WebSearch.ExcerptChars, zapLogger)
	completion := service.NewCompletionService(completer, zapLogger)

	chatService := service.NewChatService(
		service.NewClassifier(cfg.Routing),
		service.NewNamespaceResolver(cfg.Routing),
		retrieval,
		completion,
		cfg.Routing,
		zapLogger,
	)
	return chatService, closeStore, nil
}
