package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/finx/finx-pharma/internal/config"
	"go.uber.org/zap"
)

// New builds the backend selected by cfg.Provider. The returned close func is never nil.
func New(ctx context.Context, cfg config.VectorStoreConfig, timeout time.Duration, logger *zap.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider {
	case "memory":
		return NewMemoryVectorStore(logger), noop, nil
	case "pgvector":
		store, err := NewPGVectorStore(ctx, cfg.Postgres.DSN, cfg.Postgres.Table, logger)
		if err != nil {
			return nil, noop, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, noop, err
		}
		return store, store.Close, nil
	case "pinecone", "":
		p := cfg.Pinecone
		return NewPineconeStore(p.APIKey, p.IndexName, p.Host, p.ControlPlane, timeout, logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown vector store provider %q", cfg.Provider)
	}
}
