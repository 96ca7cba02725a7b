package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/buybuddy/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultModel   = "gpt-4o-mini"

	// Providers commonly allow 500 requests per minute on entry tiers;
	// stay well under that by default.
	defaultRequestsPerMinute = 60
)

// Config holds inference client configuration. BaseURL points at any
// OpenAI-compatible chat-completions endpoint.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute float64
}

// Client calls an OpenAI-compatible chat-completions API and parses its
// response into an AnalysisResult. The inference capability is a black box:
// only the request/response shapes are fixed here.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates an inference client with a bounded timeout and a
// client-side token-bucket limiter on outbound calls.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 5),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *responseSpec `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// analysisPayload is the JSON document the model is instructed to return.
type analysisPayload struct {
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Recommendation string   `json:"recommendation"`
}

// Analyze sends the extracted product fields to the inference endpoint and
// returns the parsed critique. Extraction fields are never modified. No
// retries: the caller owns retry policy.
func (c *Client) Analyze(ctx context.Context, extraction *domain.RawExtraction) (*domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyAnalysisError(err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(extraction)},
		},
		Temperature:    0.2,
		ResponseFormat: &responseSpec{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrAnalysisUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyAnalysisError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrAnalysisUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrAnalysisUnavailable, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrAnalysisUnavailable)
	}

	return parseAnalysis(chat.Choices[0].Message.Content)
}

// parseAnalysis decodes the model output and enforces the semantic floor:
// at least one pro or con and a non-empty recommendation. A structurally
// valid but empty critique is treated as unavailable.
func parseAnalysis(content string) (*domain.AnalysisResult, error) {
	var payload analysisPayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed analysis JSON: %v", domain.ErrAnalysisUnavailable, err)
	}

	pros := cleanList(payload.Pros)
	cons := cleanList(payload.Cons)
	recommendation := strings.TrimSpace(payload.Recommendation)

	if len(pros) == 0 && len(cons) == 0 {
		return nil, fmt.Errorf("%w: critique has no pros or cons", domain.ErrAnalysisUnavailable)
	}
	if recommendation == "" {
		return nil, fmt.Errorf("%w: critique has no recommendation", domain.ErrAnalysisUnavailable)
	}

	return &domain.AnalysisResult{
		Pros:           pros,
		Cons:           cons,
		Recommendation: recommendation,
	}, nil
}

// cleanList trims entries and drops empty ones, returning a non-nil slice.
func cleanList(items []string) []string {
	cleaned := []string{}
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// stripCodeFence removes a surrounding ```json fence some models emit even
// when JSON output is requested.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func classifyAnalysisError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrAnalysisTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrAnalysisTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrAnalysisUnavailable, err)
}
