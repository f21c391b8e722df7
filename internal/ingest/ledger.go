package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger remembers which files were already ingested into a namespace.
type Ledger interface {
	Seen(ctx context.Context, namespace, digest string) (bool, error)
	Mark(ctx context.Context, namespace, digest, file string) error
}

// NopLedger never skips anything.
type NopLedger struct{}

func (NopLedger) Seen(context.Context, string, string) (bool, error) { return false, nil }

func (NopLedger) Mark(context.Context, string, string, string) error { return nil }

// RedisLedger stores one hash per ingested file under finx:ingest:<namespace>:<sha256>.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger creates a ledger on an already connected client.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func ledgerKey(namespace, digest string) string {
	return fmt.Sprintf("finx:ingest:%s:%s", namespace, digest)
}

// Seen reports whether the file digest was marked before.
func (l *RedisLedger) Seen(ctx context.Context, namespace, digest string) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKey(namespace, digest)).Result()
	if err != nil {
		return false, fmt.Errorf("check ledger: %w", err)
	}
	return n > 0, nil
}

// Mark records the file as ingested.
func (l *RedisLedger) Mark(ctx context.Context, namespace, digest, file string) error {
	err := l.client.HSet(ctx, ledgerKey(namespace, digest),
		"file", file,
		"ingestedAt", time.Now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("mark ledger: %w", err)
	}
	return nil
}

// FileDigest hex sha256 of the file content
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
