package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestEmbeddingClientEmbedBatchOrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "text-embedding-3-large" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}],"usage":{"total_tokens":7}}`))
	}))
	defer server.Close()

	c := NewEmbeddingClient("sk-test", server.URL, "text-embedding-3-large", 5*time.Second, zap.NewNop())
	got, err := c.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(got) != 2 || got[0][0] != 1 || got[1][1] != 1 {
		t.Errorf("EmbedBatch() = %v", got)
	}
}

func TestEmbeddingClientEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,0.25,0.125]}]}`))
	}))
	defer server.Close()

	c := NewEmbeddingClient("sk-test", server.URL, "text-embedding-3-large", 5*time.Second, zap.NewNop())
	got, err := c.Embed(context.Background(), "Cipla revenue")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 || got[2] != 0.125 {
		t.Errorf("Embed() = %v", got)
	}
}

func TestEmbeddingClientCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := NewEmbeddingClient("sk-test", server.URL, "m", 5*time.Second, zap.NewNop())
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error when no vectors are returned")
	}
	if got, err := c.EmbedBatch(context.Background(), nil); err != nil || got != nil {
		t.Errorf("EmbedBatch(nil) = %v, %v", got, err)
	}
}
