package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/observability/logging"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/tracing"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	maxErrorBodyBytes    = 2048
)

type OpenAIOptions struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// OpenAIClient calls an OpenAI compatible /v1/chat/completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		httpClient: newHTTPClient(baseURL, opts.APIKey),
	}
}

// WithHTTPClient replaces the transport; used by tests.
func (c *OpenAIClient) WithHTTPClient(hc *http.Client) *OpenAIClient {
	c.httpClient = hc
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := tracing.StartGeneratorSpan(ctx, "openai", c.modelFor(req))
	defer span.End()

	text, err := c.generate(ctx, req)
	tracing.RecordGeneratorResult(span, len(text), err)
	return text, err
}

func (c *OpenAIClient) generate(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: c.modelFor(req),
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens: req.MaxTokens,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.maxTokens
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("x-request-id", logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx)))

	startedAt := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		ge := classify(ctx, err)
		slog.WarnContext(ctx, "generator request failed",
			slog.String("kind", string(ge.Kind)),
			slog.String("error", err.Error()),
		)
		return "", ge
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		slog.WarnContext(ctx, "unexpected status code from generator",
			slog.Int("status_code", resp.StatusCode),
		)
		return "", &Error{Kind: KindNonOKStatus, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(ctx, err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &Error{Kind: KindEmptyResponse, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	var text string
	if len(decoded.Choices) > 0 {
		text = strings.TrimSpace(decoded.Choices[0].Message.Content)
	}
	if text == "" {
		return "", &Error{Kind: KindEmptyResponse}
	}

	slog.DebugContext(ctx, "generator responded",
		slog.Int("response_bytes", len(text)),
		slog.Duration("elapsed", time.Since(startedAt)),
	)
	return text, nil
}

func (c *OpenAIClient) modelFor(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}
