package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestOpenAIClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "chatcmpl-1",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Revenue grew 12%."}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", server.URL+"/", "gpt-4o-mini", 5*time.Second, zap.NewNop())
	got, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "Cipla revenue?"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "Revenue grew 12%." {
		t.Errorf("Chat() = %q", got)
	}
	if c.Model() != "gpt-4o-mini" {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestOpenAIClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", server.URL, "gpt-4o-mini", 5*time.Second, zap.NewNop())
	if _, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Chat error = %v, want ErrEmptyResponse", err)
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", server.URL, "gpt-4o-mini", 5*time.Second, zap.NewNop())
	if _, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("expected error on 429")
	}
}

func TestOpenAIClientHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewOpenAIClient("sk-test", server.URL, "gpt-4o-mini", 5*time.Second, zap.NewNop())
	if _, err := c.Chat(ctx, []Message{{Role: "user", Content: "hi"}}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Chat error = %v, want deadline exceeded", err)
	}
}
