package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// MemoryVectorStore in-process namespaced store for local runs and tests
type MemoryVectorStore struct {
	namespaces map[string]map[string]Record // namespace -> id -> record
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewMemoryVectorStore creates an empty store.
func NewMemoryVectorStore(logger *zap.Logger) *MemoryVectorStore {
	return &MemoryVectorStore{
		namespaces: make(map[string]map[string]Record),
		logger:     logger,
	}
}

// Upsert stores records, replacing any with the same ID.
func (s *MemoryVectorStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if namespace == "" {
		return ErrNamespaceRequired
	}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record ID cannot be empty")
		}
		if len(r.Values) == 0 {
			return fmt.Errorf("record %s: %w", r.ID, ErrEmptyVector)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.namespaces[namespace]
	if !ok {
		docs = make(map[string]Record)
		s.namespaces[namespace] = docs
	}
	for _, r := range records {
		docs[r.ID] = r
	}

	s.logger.Debug("records upserted",
		zap.String("namespace", namespace),
		zap.Int("count", len(records)))
	return nil
}

// Query cosine similarity search within one namespace.
func (s *MemoryVectorStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	if namespace == "" {
		return nil, ErrNamespaceRequired
	}
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.namespaces[namespace]
	matches := make([]Match, 0, len(docs))
	for _, doc := range docs {
		matches = append(matches, Match{
			ID:       doc.ID,
			Score:    cosineSimilarity(vector, doc.Values),
			Metadata: doc.Metadata,
		})
	}

	// score descending, ID for a stable order between equal scores
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	s.logger.Debug("memory query finished",
		zap.String("namespace", namespace),
		zap.Int("docCount", len(docs)),
		zap.Int("matches", len(matches)))

	return matches, nil
}

// Count number of records in namespace
func (s *MemoryVectorStore) Count(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace])
}

// cosineSimilarity returns 0 for mismatched dimensions or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
