package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docchat/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Store is a minimal REST client to Qdrant. Collections are created with
// cosine distance on first write; one collection per user keeps tenants
// isolated.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Config contains connection details for a Qdrant vector store.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist yet.
// Qdrant returns 200 OK when the collection already exists with the same
// schema.
func (s *Store) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	_, err = s.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", collection), body, nil)
	return err
}

// CollectionExists checks for the collection with a GET; 404 means the
// collection has never been written to.
func (s *Store) CollectionExists(ctx context.Context, collection string) (bool, error) {
	status, err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", collection), nil, nil)
	if status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Upsert(ctx context.Context, collection string, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		payload := map[string]any{"text": rec.Text}
		for k, v := range rec.Metadata {
			payload[k] = v
		}
		points = append(points, map[string]any{
			"id":      rec.ID,
			"vector":  rec.Embedding,
			"payload": payload,
		})
	}
	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", collection)
	_, err := s.doRequest(ctx, http.MethodPut, path, body, nil)
	return err
}

type searchResult struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
	Vector  []float32      `json:"vector"`
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, opts domain.SearchOptions) ([]domain.Match, error) {
	limit := opts.TopK
	if limit <= 0 {
		limit = 5
	}
	request := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if opts.WithVectors {
		request["with_vector"] = true
	}
	var response struct {
		Result []searchResult `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", collection)
	if _, err := s.doRequest(ctx, http.MethodPost, path, request, &response); err != nil {
		return nil, err
	}
	matches := make([]domain.Match, 0, len(response.Result))
	for _, res := range response.Result {
		match := domain.Match{
			ID:        fmt.Sprint(res.ID),
			Score:     res.Score,
			Embedding: res.Vector,
			Metadata:  make(map[string]string),
		}
		for k, v := range res.Payload {
			str, ok := v.(string)
			if !ok {
				continue
			}
			if k == "text" {
				match.Text = str
				continue
			}
			match.Metadata[k] = str
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// doRequest executes one JSON request and decodes the response into out
// when provided. The HTTP status is returned so callers can treat 404 as
// a signal rather than a failure.
func (s *Store) doRequest(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("qdrant: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("qdrant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant: request failed: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("qdrant: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Status struct {
				Error string `json:"error"`
			} `json:"status"`
		}
		if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Status.Error != "" {
			return resp.StatusCode, fmt.Errorf("qdrant: %s %s (%d): %s", method, path, resp.StatusCode, apiErr.Status.Error)
		}
		return resp.StatusCode, fmt.Errorf("qdrant: %s %s failed with status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
