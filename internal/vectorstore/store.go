// Package vectorstore holds the namespaced vector store backends the knowledge base
// queries at request time and the ingestion job writes to.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrNamespaceRequired every read and write targets exactly one namespace.
	ErrNamespaceRequired = errors.New("namespace is required")
	// ErrEmptyVector a query or record carried no vector values.
	ErrEmptyVector = errors.New("vector cannot be empty")
)

// Store namespaced similarity search
type Store interface {
	// Query returns up to topK matches in namespace, most similar first.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
	// Upsert inserts or replaces records in namespace.
	Upsert(ctx context.Context, namespace string, records []Record) error
}

// Record a vector to store, keyed by ID within its namespace
type Record struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Match one search hit
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Text returns metadata["text"] when it is a string, otherwise "".
func (m Match) Text() string {
	if m.Metadata == nil {
		return ""
	}
	s, _ := m.Metadata["text"].(string)
	return s
}
