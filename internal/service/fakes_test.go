package service

import (
	"context"
	"sync"

	"github.com/finx/finx-pharma/internal/client"
	"github.com/finx/finx-pharma/internal/config"
	"github.com/finx/finx-pharma/internal/model"
	"github.com/finx/finx-pharma/internal/vectorstore"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.vector == nil {
		return []float32{1, 0, 0}, nil
	}
	return f.vector, nil
}

type fakeStore struct {
	mu         sync.Mutex
	calls      int
	namespaces []string
	topK       int
	matches    []vectorstore.Match
	err        error
}

func (f *fakeStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]vectorstore.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.namespaces = append(f.namespaces, namespace)
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func (f *fakeStore) Upsert(ctx context.Context, namespace string, records []vectorstore.Record) error {
	return nil
}

type fakeWeb struct {
	mu      sync.Mutex
	calls   int
	queries []string
	results []model.WebResult
	err     error
}

func (f *fakeWeb) Search(ctx context.Context, query string, numResults int) ([]model.WebResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	got   []client.Message
	reply string
	err   error
}

func (f *fakeCompleter) Chat(ctx context.Context, messages []client.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func textMatch(id, text string) vectorstore.Match {
	return vectorstore.Match{ID: id, Score: 0.9, Metadata: map[string]interface{}{"text": text}}
}

// newTestChatService wires a pipeline over fakes; completer, store and web may be nil.
func newTestChatService(completer ChatCompleter, embedder Embedder, store vectorstore.Store, web WebSearcher) *ChatService {
	logger := zap.NewNop()
	routing := config.DefaultRoutingConfig()

	var knowledge *KnowledgeService
	if store != nil {
		knowledge = NewKnowledgeService(embedder, store, 8, logger)
	}
	retrieval := NewRetrievalService(knowledge, web, 3, 500, logger)

	return NewChatService(
		NewClassifier(routing),
		NewNamespaceResolver(routing),
		retrieval,
		NewCompletionService(completer, logger),
		routing,
		logger,
	)
}
