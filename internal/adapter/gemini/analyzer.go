// Package gemini is an Analyzer over the Gemini generative API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"decoder/internal/analysis"
	"decoder/internal/text"
)

const DefaultModel = "gemini-1.5-flash"

type Analyzer struct {
	client *genai.Client
	model  string
}

var _ analysis.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Analyzer, error) {
	if apiKey == "" {
		return nil, analysis.ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Analyzer{client: client, model: model}, nil
}

func (a *Analyzer) Analyze(ctx context.Context, content string, framework analysis.Framework) (string, error) {
	input := content
	if framework != analysis.Email {
		input = text.AnalysisWindow(content)
	}

	m := a.client.GenerativeModel(a.model)
	m.SetTemperature(0.7)

	slog.DebugContext(ctx, "requesting analysis", "model", a.model, "framework", framework, "length", len(input))
	resp, err := m.GenerateContent(ctx, genai.Text(analysis.Prompt(framework, input)))
	if err != nil {
		slog.ErrorContext(ctx, "analysis failed", "model", a.model, "error", err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", analysis.ErrEmptyResponse
	}
	return b.String(), nil
}

func (a *Analyzer) Close() error {
	return a.client.Close()
}
