// Package enhancer talks to an optional external agent service that can
// produce a richer answer from the retrieved memories. The service is
// strictly best effort: every failure is logged at debug level and the
// caller falls back to the local completion path.
package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/webrecall/webrecall-go/pkg/model"
)

const (
	warmTimeout = 30 * time.Second
	// Agent runs can involve several model calls; give them room.
	enhanceTimeout = 5 * time.Minute

	memoryContentLimit = 200
)

// Insights reports what the agent service looked at while answering.
type Insights struct {
	MemoriesAnalyzed int     `json:"memoriesAnalyzed"`
	AverageRelevance float64 `json:"averageRelevance"`
}

// Client calls the enhancer service. The zero value is disabled.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient returns a client for the service at baseURL. An empty baseURL
// yields a disabled client whose Enhance always reports unavailable.
func NewClient(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: enhanceTimeout},
		logger:     logger,
	}
}

// Enabled reports whether a service URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Warm pings the service health endpoint so a cold service can start
// loading before the first real request. Errors are ignored.
func (c *Client) Warm(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, warmTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("enhancer warm-up failed", "error", err)
		return
	}
	resp.Body.Close()
}

type enhanceMemory struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
}

type enhanceRequest struct {
	Query            string          `json:"query"`
	RelevantMemories []enhanceMemory `json:"relevantMemories"`
	UserContext      []string        `json:"userContext"`
}

type enhanceResponse struct {
	EnhancedResponse string   `json:"enhancedResponse"`
	AgentInsights    Insights `json:"agentInsights"`
}

// Enhance asks the service to answer query using the retrieved memories and
// recent session questions. It returns the answer and the service's
// insights, or an error when the service is disabled, unreachable, or
// returned something unusable. Callers treat any error as "use the local
// path instead".
func (c *Client) Enhance(ctx context.Context, query string, results []model.SearchResult, userContext []string) (string, Insights, error) {
	if !c.Enabled() {
		return "", Insights{}, errors.New("enhancer: not configured")
	}

	payload := enhanceRequest{
		Query:       query,
		UserContext: userContext,
	}
	for _, res := range results {
		content := res.Memory.Content
		if len(content) > memoryContentLimit {
			// Cut on a rune boundary so the JSON stays valid UTF-8.
			cut := memoryContentLimit
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			content = content[:cut]
		}
		payload.RelevantMemories = append(payload.RelevantMemories, enhanceMemory{
			Title:      res.Memory.Title,
			Content:    content,
			URL:        res.Memory.URL,
			Similarity: res.Score,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", Insights{}, fmt.Errorf("enhancer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/enhance", bytes.NewReader(body))
	if err != nil {
		return "", Insights{}, fmt.Errorf("enhancer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("enhancer request failed", "error", err)
		return "", Insights{}, fmt.Errorf("enhancer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("enhancer returned non-OK status", "status", resp.StatusCode)
		return "", Insights{}, fmt.Errorf("enhancer: status %d", resp.StatusCode)
	}

	var out enhanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", Insights{}, fmt.Errorf("enhancer: decode response: %w", err)
	}
	if strings.TrimSpace(out.EnhancedResponse) == "" {
		return "", Insights{}, errors.New("enhancer: empty response")
	}
	return out.EnhancedResponse, out.AgentInsights, nil
}
