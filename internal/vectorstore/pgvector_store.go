package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PGVectorStore Postgres + pgvector backend; namespaces are a column
type PGVectorStore struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewPGVectorStore opens dsn with the pgx driver and checks the connection.
func NewPGVectorStore(ctx context.Context, dsn, table string, logger *zap.Logger) (*PGVectorStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PGVectorStore{db: db, table: table, logger: logger}, nil
}

// EnsureSchema creates the extension, table and namespace index when missing.
func (s *PGVectorStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            namespace TEXT NOT NULL,
            id TEXT NOT NULL,
            embedding vector NOT NULL,
            metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            PRIMARY KEY (namespace, id)
        )`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_namespace ON %s(namespace)`, s.table, s.table),
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// Query orders by cosine distance; score is 1 - distance.
func (s *PGVectorStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	if namespace == "" {
		return nil, ErrNamespaceRequired
	}
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	query := fmt.Sprintf(`
        SELECT id, metadata, 1 - (embedding <=> $1) AS score
        FROM %s
        WHERE namespace = $2
        ORDER BY embedding <=> $1
        LIMIT $3
    `, s.table)

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(vector), namespace, topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector query %s: %w", namespace, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			metaJSON []byte
		)
		if err := rows.Scan(&m.ID, &metaJSON, &m.Score); err != nil {
			return nil, fmt.Errorf("scan pgvector row: %w", err)
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &m.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pgvector rows: %w", err)
	}

	s.logger.Debug("pgvector query finished",
		zap.String("namespace", namespace),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// Upsert writes all records in one transaction.
func (s *PGVectorStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if namespace == "" {
		return ErrNamespaceRequired
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(`
        INSERT INTO %s (namespace, id, embedding, metadata)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (namespace, id)
        DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, created_at = NOW()
    `, s.table)

	for _, r := range records {
		if len(r.Values) == 0 {
			return fmt.Errorf("record %s: %w", r.ID, ErrEmptyVector)
		}
		metaJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, stmt, namespace, r.ID, pgvector.NewVector(r.Values), string(metaJSON)); err != nil {
			return fmt.Errorf("upsert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PGVectorStore) Close() error {
	return s.db.Close()
}
