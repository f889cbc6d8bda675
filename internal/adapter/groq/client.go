// Package groq is an Analyzer over an OpenAI-compatible chat completions API.
package groq

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

	"decoder/internal/analysis"
	"decoder/internal/text"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel   = "llama-3.3-70b-versatile"

	temperature = 0.7
	// email analyses are shorter than document analyses
	emailMaxTokens    = 2000
	documentMaxTokens = 3000
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ analysis.Analyzer = (*Client)(nil)

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 45 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Analyze sends one chat completion and returns the assistant message. It does
// not retry.
func (c *Client) Analyze(ctx context.Context, content string, framework analysis.Framework) (string, error) {
	if c.apiKey == "" {
		return "", analysis.ErrNotConfigured
	}

	input := content
	maxTokens := emailMaxTokens
	if framework != analysis.Email {
		input = text.AnalysisWindow(content)
		maxTokens = documentMaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: analysis.Prompt(framework, input)}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	slog.DebugContext(ctx, "requesting analysis", "model", c.model, "framework", framework, "length", len(input))
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("groq read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, respBody)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("groq unexpected response: %s", preview(respBody))
	}
	if chat.Error != nil {
		return "", fmt.Errorf("groq api error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 || strings.TrimSpace(chat.Choices[0].Message.Content) == "" {
		return "", analysis.ErrEmptyResponse
	}

	slog.InfoContext(ctx, "analysis completed", "model", c.model, "duration_ms", time.Since(start).Milliseconds())
	return chat.Choices[0].Message.Content, nil
}

func apiError(status int, body []byte) error {
	var parsed chatResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return fmt.Errorf("groq api error (status %d): %s", status, parsed.Error.Message)
	}
	return fmt.Errorf("groq api error (status %d): %s", status, preview(body))
}

func preview(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
