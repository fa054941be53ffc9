// Package ollama is a minimal REST client for an Ollama-compatible model
// runtime. LogWise never runs inference in-process; every generation goes
// through this client to a locally hosted runtime.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/metrics"
)

const (
	// DefaultURL is where a stock runtime listens.
	DefaultURL = "http://localhost:11434"

	pingTimeout     = 5 * time.Second
	generateTimeout = 300 * time.Second
)

// Client talks to one runtime endpoint.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given base URL (empty means DefaultURL).
// Per-call deadlines come from contexts, not the transport.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
	}
}

// BaseURL returns the runtime endpoint this client targets.
func (c *Client) BaseURL() string { return c.base }

// Model is one entry from the runtime's tag list.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Ping checks runtime connectivity with a short budget.
// Returns domain.ErrRuntimeUnreachable when the runtime does not answer.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRuntimeUnreachable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET /api/tags returned HTTP %d", domain.ErrRuntimeUnreachable, resp.StatusCode)
	}
	return nil
}

// ListModels returns the models the runtime has locally.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuntimeUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /api/tags: HTTP %d", resp.StatusCode)
	}

	var out struct {
		Models []Model `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode /api/tags response: %w", err)
	}
	return out.Models, nil
}

// HasModel reports whether the runtime serves the named model.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// PullFunc receives pull progress: a status string and a 0-100 percentage
// (negative when the runtime did not report totals).
type PullFunc func(status string, pct float64)

// pullEvent is one NDJSON line from POST /api/pull.
type pullEvent struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// Pull asks the runtime to download a model, streaming progress events.
func (c *Client) Pull(ctx context.Context, name string, progress PullFunc) error {
	body, _ := json.Marshal(map[string]any{"name": name, "stream": true})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRuntimeUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("POST /api/pull: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var lastCompleted int64
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev pullEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue // tolerate malformed keepalive lines
		}
		if ev.Error != "" {
			return fmt.Errorf("pull %s: %s", name, ev.Error)
		}
		if ev.Completed > lastCompleted {
			metrics.PullBytes.Add(float64(ev.Completed - lastCompleted))
			lastCompleted = ev.Completed
		}
		if progress != nil {
			pct := -1.0
			if ev.Total > 0 {
				pct = float64(ev.Completed) / float64(ev.Total) * 100
			}
			progress(ev.Status, pct)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("pull %s interrupted: %w", name, err)
	}
	return nil
}

// Generate runs a non-streaming completion and returns the response text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRuntimeUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("POST /api/generate: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode /api/generate response: %w", err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("runtime returned an empty response for model %s", model)
	}
	return out.Response, nil
}
