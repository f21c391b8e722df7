// Package ingest loads company PDFs into the vector store, one namespace per
// subdirectory of the data root.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/finx/finx-pharma/internal/config"
	"github.com/finx/finx-pharma/internal/vectorstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder batch embedding with the same model the chat service queries with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Report totals for one run
type Report struct {
	RunID          string
	PDFsProcessed  int
	PDFsSkipped    int
	ChunksUploaded int
	Namespaces     []string
}

// Ingester walks the data root and uploads every PDF it finds.
type Ingester struct {
	embedder   Embedder
	store      vectorstore.Store
	ledger     Ledger
	extract    TextExtractor
	cfg        config.IngestConfig
	force      bool
	retryDelay time.Duration
	logger     *zap.Logger
}

// Option customizes an Ingester.
type Option func(*Ingester)

// WithLedger skips files already recorded in l.
func WithLedger(l Ledger) Option {
	return func(i *Ingester) { i.ledger = l }
}

// WithForce re-ingests files even when the ledger has them.
func WithForce(force bool) Option {
	return func(i *Ingester) { i.force = force }
}

// WithExtractor replaces PDF text extraction.
func WithExtractor(e TextExtractor) Option {
	return func(i *Ingester) { i.extract = e }
}

// WithRetryDelay base delay between upsert attempts; attempt n waits n*d.
func WithRetryDelay(d time.Duration) Option {
	return func(i *Ingester) { i.retryDelay = d }
}

// NewIngester creates an ingester.
func NewIngester(embedder Embedder, store vectorstore.Store, cfg config.IngestConfig, logger *zap.Logger, opts ...Option) *Ingester {
	i := &Ingester{
		embedder:   embedder,
		store:      store,
		ledger:     NopLedger{},
		extract:    PDFTextExtractor(logger),
		cfg:        cfg,
		retryDelay: time.Second,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run ingests every namespace folder under root, or only the named one.
func (i *Ingester) Run(ctx context.Context, root, only string) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}
	logger := i.logger.With(zap.String("runId", report.RunID))

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read data root %s: %w", root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		namespace := entry.Name()
		if only != "" && namespace != only {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pdfs, err := listPDFs(filepath.Join(root, namespace))
		if err != nil {
			logger.Error("list namespace folder failed", zap.String("namespace", namespace), zap.Error(err))
			continue
		}
		if len(pdfs) == 0 {
			logger.Info("no pdfs, skipping namespace", zap.String("namespace", namespace))
			continue
		}

		touched := false
		for _, path := range pdfs {
			uploaded, skipped, err := i.IngestFile(ctx, namespace, path)
			switch {
			case err != nil:
				logger.Error("pdf ingestion failed",
					zap.String("namespace", namespace),
					zap.String("file", filepath.Base(path)),
					zap.Error(err))
			case skipped:
				report.PDFsSkipped++
			default:
				report.PDFsProcessed++
				report.ChunksUploaded += uploaded
				touched = true
			}
		}
		if touched {
			report.Namespaces = append(report.Namespaces, namespace)
		}
	}

	logger.Info("ingestion finished",
		zap.Int("pdfs", report.PDFsProcessed),
		zap.Int("skipped", report.PDFsSkipped),
		zap.Int("chunks", report.ChunksUploaded),
		zap.Strings("namespaces", report.Namespaces))
	return report, nil
}

// IngestFile uploads one PDF and returns the number of vectors written.
// skipped is true when the ledger already has the file.
func (i *Ingester) IngestFile(ctx context.Context, namespace, path string) (uploaded int, skipped bool, err error) {
	name := filepath.Base(path)
	logger := i.logger.With(zap.String("namespace", namespace), zap.String("file", name))

	digest, err := FileDigest(path)
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", name, err)
	}
	if !i.force {
		seen, err := i.ledger.Seen(ctx, namespace, digest)
		if err != nil {
			logger.Warn("ledger unavailable, ingesting anyway", zap.Error(err))
		} else if seen {
			logger.Info("already ingested, skipping")
			return 0, true, nil
		}
	}

	text, err := i.extract(path)
	if err != nil {
		return 0, false, fmt.Errorf("extract %s: %w", name, err)
	}

	chunks := ChunkText(text, i.cfg.ChunkSize, i.cfg.ChunkOverlap)
	logger.Info("extracted chunks", zap.Int("chunks", len(chunks)))

	batchSize := i.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	failed := false
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		records := i.buildRecords(ctx, namespace, name, chunks[start:end])
		if len(records) < end-start {
			failed = true
		}
		if len(records) == 0 {
			continue
		}
		if err := i.upsertWithRetry(ctx, namespace, records); err != nil {
			logger.Error("batch upload failed",
				zap.Int("firstChunk", chunks[start].Index),
				zap.Error(err))
			failed = true
			continue
		}
		uploaded += len(records)
	}

	// a file with unembedded or unuploaded chunks is retried on the next run
	if !failed {
		if err := i.ledger.Mark(ctx, namespace, digest, name); err != nil {
			logger.Warn("ledger update failed", zap.Error(err))
		}
	}
	logger.Info("uploaded vectors", zap.Int("vectors", uploaded))
	return uploaded, false, nil
}

// buildRecords embeds a batch in one call and falls back to one call per chunk,
// so a failing chunk only drops itself.
func (i *Ingester) buildRecords(ctx context.Context, namespace, pdfName string, chunks []Chunk) []vectorstore.Record {
	texts := make([]string, len(chunks))
	for k, c := range chunks {
		texts[k] = c.Text
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		i.logger.Warn("batch embedding failed, embedding chunks one by one",
			zap.String("file", pdfName),
			zap.Error(err))
		vectors = make([][]float32, len(chunks))
		for k, c := range chunks {
			v, err := i.embedder.Embed(ctx, c.Text)
			if err != nil {
				i.logger.Warn("chunk embedding failed",
					zap.String("chunkId", chunkID(pdfName, c.Index)),
					zap.Error(err))
				continue
			}
			vectors[k] = v
		}
	}

	records := make([]vectorstore.Record, 0, len(chunks))
	for k, c := range chunks {
		if len(vectors[k]) == 0 {
			continue
		}
		records = append(records, vectorstore.Record{
			ID:     chunkID(pdfName, c.Index),
			Values: vectors[k],
			Metadata: map[string]interface{}{
				"pdf_name": pdfName,
				"company":  namespace,
				"chunk_id": c.Index,
				"text":     c.Text,
			},
		})
	}
	return records
}

func (i *Ingester) upsertWithRetry(ctx context.Context, namespace string, records []vectorstore.Record) error {
	attempts := i.cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = i.store.Upsert(ctx, namespace, records); err == nil {
			return nil
		}
		i.logger.Warn("upsert failed",
			zap.String("namespace", namespace),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", attempts),
			zap.Error(err))
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * i.retryDelay):
		}
	}
	return fmt.Errorf("upsert %d records after %d attempts: %w", len(records), attempts, err)
}

func chunkID(pdfName string, index int) string {
	return fmt.Sprintf("%s_%d", pdfName, index)
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && isPDF(e.Name()) {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
