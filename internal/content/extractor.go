// Package content pulls analysable text out of web pages and PDF files.
package content

import (
	"errors"
	"net/http"
	"time"
)

var (
	ErrInsufficientContent = errors.New("insufficient content")
	ErrTooLarge            = errors.New("content too large")
	ErrFetch               = errors.New("fetch failed")
)

const (
	DefaultMaxPDFPages = 30
	MaxPDFBytes        = 10 << 20

	userAgent = "Mozilla/5.0 (compatible; ExecutiveDecoder/1.0)"
)

type Extractor struct {
	client      *http.Client
	maxPDFPages int
}

type Option func(*Extractor)

func WithHTTPClient(hc *http.Client) Option {
	return func(e *Extractor) { e.client = hc }
}

func WithMaxPDFPages(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPDFPages = n
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:      &http.Client{Timeout: 20 * time.Second},
		maxPDFPages: DefaultMaxPDFPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
