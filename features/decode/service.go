// Package decode turns pasted text, a web page or a PDF into an analysis.
package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"decoder/internal/analysis"
	"decoder/internal/content"
	"decoder/internal/text"
)

var ErrInvalidInput = errors.New("invalid input")

type InputType string

const (
	InputText InputType = "text"
	InputURL  InputType = "url"
	InputPDF  InputType = "pdf"
)

type ContentExtractor interface {
	FromURL(ctx context.Context, url string) (string, error)
	FromPDF(data []byte) (string, error)
}

type Input struct {
	Type      InputType
	Text      string
	URL       string
	PDF       []byte
	Framework analysis.Framework
}

type Stats struct {
	Chars          int   `json:"chars"`
	AnalyzedChars  int   `json:"analyzedChars"`
	EstimatedPages int   `json:"estimatedPages"`
	DurationMS     int64 `json:"durationMs"`
}

type Result struct {
	Analysis  string             `json:"analysis"`
	Framework analysis.Framework `json:"framework"`
	Stats     Stats              `json:"stats"`
}

type Service struct {
	analyzer  analysis.Analyzer
	extractor ContentExtractor
}

func NewService(a analysis.Analyzer, e ContentExtractor) *Service {
	return &Service{analyzer: a, extractor: e}
}

func (s *Service) Decode(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()

	doc, err := s.extract(ctx, in)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(doc) < text.MinContentLength {
		return nil, fmt.Errorf("%w: %d characters, need %d", content.ErrInsufficientContent, utf8.RuneCountInString(doc), text.MinContentLength)
	}

	window := text.AnalysisWindow(doc)
	slog.InfoContext(ctx, "content extracted", "input", in.Type, "chars", len(doc), "window_chars", len(window), "framework", in.Framework)

	out, err := s.analyzer.Analyze(ctx, doc, in.Framework)
	if err != nil {
		return nil, err
	}

	return &Result{
		Analysis:  out,
		Framework: in.Framework,
		Stats: Stats{
			Chars:          utf8.RuneCountInString(doc),
			AnalyzedChars:  utf8.RuneCountInString(window),
			EstimatedPages: text.EstimatePages(doc),
			DurationMS:     time.Since(start).Milliseconds(),
		},
	}, nil
}

func (s *Service) extract(ctx context.Context, in Input) (string, error) {
	switch in.Type {
	case InputText:
		if in.Text == "" {
			return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
		}
		return text.Clean(in.Text), nil
	case InputURL:
		if in.URL == "" {
			return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
		}
		return s.extractor.FromURL(ctx, in.URL)
	case InputPDF:
		if len(in.PDF) == 0 {
			return "", fmt.Errorf("%w: file is required", ErrInvalidInput)
		}
		return s.extractor.FromPDF(in.PDF)
	}
	return "", fmt.Errorf("%w: unknown input type %q", ErrInvalidInput, in.Type)
}
