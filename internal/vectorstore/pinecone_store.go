package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const pineconeAPIVersion = "2024-07"

// PineconeStore Pinecone serverless index over its REST data plane
type PineconeStore struct {
	apiKey       string
	indexName    string
	controlPlane string
	httpClient   *http.Client
	logger       *zap.Logger

	mu     sync.Mutex
	host   string // data plane URL, resolved on first use when not configured
	lookup singleflight.Group
}

// NewPineconeStore creates a store. host may be empty, in which case it is looked up
// from the control plane by index name.
func NewPineconeStore(apiKey, indexName, host, controlPlane string, timeout time.Duration, logger *zap.Logger) *PineconeStore {
	return &PineconeStore{
		apiKey:       apiKey,
		indexName:    indexName,
		controlPlane: strings.TrimRight(controlPlane, "/"),
		host:         normalizeHost(host),
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type pineconeQueryRequest struct {
	Namespace       string    `json:"namespace"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeQueryResponse struct {
	Matches   []Match `json:"matches"`
	Namespace string  `json:"namespace"`
}

type pineconeUpsertRequest struct {
	Vectors   []Record `json:"vectors"`
	Namespace string   `json:"namespace"`
}

type pineconeUpsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

type pineconeDescribeResponse struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

// Query searches namespace with metadata included.
func (s *PineconeStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	if namespace == "" {
		return nil, ErrNamespaceRequired
	}
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	host, err := s.resolveHost(ctx)
	if err != nil {
		return nil, err
	}

	var resp pineconeQueryResponse
	err = s.do(ctx, http.MethodPost, host+"/query", pineconeQueryRequest{
		Namespace:       namespace,
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("pinecone query %s: %w", namespace, err)
	}

	s.logger.Debug("pinecone query finished",
		zap.String("namespace", namespace),
		zap.Int("matches", len(resp.Matches)))
	return resp.Matches, nil
}

// Upsert writes one batch of records.
func (s *PineconeStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if namespace == "" {
		return ErrNamespaceRequired
	}
	if len(records) == 0 {
		return nil
	}

	host, err := s.resolveHost(ctx)
	if err != nil {
		return err
	}

	var resp pineconeUpsertResponse
	err = s.do(ctx, http.MethodPost, host+"/vectors/upsert", pineconeUpsertRequest{
		Vectors:   records,
		Namespace: namespace,
	}, &resp)
	if err != nil {
		return fmt.Errorf("pinecone upsert %s: %w", namespace, err)
	}

	s.logger.Debug("pinecone upsert finished",
		zap.String("namespace", namespace),
		zap.Int("upserted", resp.UpsertedCount))
	return nil
}

// resolveHost returns the data plane URL. Concurrent callers share one control
// plane lookup, and each stops waiting when its own ctx ends.
func (s *PineconeStore) resolveHost(ctx context.Context) (string, error) {
	s.mu.Lock()
	host := s.host
	s.mu.Unlock()
	if host != "" {
		return host, nil
	}

	// detached so one caller's deadline does not fail the shared lookup;
	// httpClient.Timeout still bounds it
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.lookup.DoChan("host", func() (interface{}, error) {
		return s.describeHost(lookupCtx)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("describe pinecone index %s: %w", s.indexName, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *PineconeStore) describeHost(ctx context.Context) (string, error) {
	var desc pineconeDescribeResponse
	if err := s.do(ctx, http.MethodGet, s.controlPlane+"/indexes/"+s.indexName, nil, &desc); err != nil {
		return "", fmt.Errorf("describe pinecone index %s: %w", s.indexName, err)
	}
	if desc.Host == "" {
		return "", fmt.Errorf("pinecone index %s has no host", s.indexName)
	}

	host := normalizeHost(desc.Host)
	s.mu.Lock()
	s.host = host
	s.mu.Unlock()
	s.logger.Info("pinecone host resolved",
		zap.String("index", s.indexName),
		zap.String("host", host))
	return host, nil
}

func (s *PineconeStore) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("X-Pinecone-API-Version", pineconeAPIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeHost adds a scheme to bare hostnames as returned by the control plane.
func normalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host
}
