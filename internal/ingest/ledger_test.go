package ingest

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/finx/finx-pharma/internal/config"
	finxredis "github.com/finx/finx-pharma/pkg/redis"
)

func newTestRedisLedger(t *testing.T) *RedisLedger {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set; skipping redis ledger tests")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT")); err == nil {
		port = p
	}

	client, err := finxredis.NewRedisClient(config.RedisConfig{Host: host, Port: port, DB: 15})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedisLedger(client)
}

func TestRedisLedgerSeenAndMark(t *testing.T) {
	l := newTestRedisLedger(t)
	ctx := context.Background()
	digest := "test-" + strconv.FormatInt(int64(os.Getpid()), 10)
	t.Cleanup(func() { l.client.Del(context.Background(), ledgerKey("cipla", digest)) })

	seen, err := l.Seen(ctx, "cipla", digest)
	if err != nil || seen {
		t.Fatalf("Seen before Mark = %v, %v", seen, err)
	}
	if err := l.Mark(ctx, "cipla", digest, "annual.pdf"); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	seen, err = l.Seen(ctx, "cipla", digest)
	if err != nil || !seen {
		t.Errorf("Seen after Mark = %v, %v", seen, err)
	}
	if seen, _ := l.Seen(ctx, "sunpharma", digest); seen {
		t.Error("ledger entries must be per namespace")
	}

	file, err := l.client.HGet(ctx, ledgerKey("cipla", digest), "file").Result()
	if err != nil || file != "annual.pdf" {
		t.Errorf("stored file = %q, %v", file, err)
	}
}

func TestLedgerKey(t *testing.T) {
	if got := ledgerKey("cipla", "abc"); got != "finx:ingest:cipla:abc" {
		t.Errorf("ledgerKey() = %q", got)
	}
}
