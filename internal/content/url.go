package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"decoder/internal/text"
)

// selectors are tried in order; the first with enough text wins.
var selectors = []string{"article", "main", "[role='main']", ".content", "#content", "body"}

const (
	stripSelector  = "script, style, nav, header, footer, iframe, img"
	minSelectorLen = 500
	maxPageBytes   = 5 << 20
)

// FromURL downloads a page and returns its main text.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	out, err := FromHTML(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "url content extracted", "url", rawURL, "length", utf8.RuneCountInString(out))
	return out, nil
}

// FromHTML extracts the main text of an HTML document.
func FromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(stripSelector).Remove()

	var out string
	for _, sel := range selectors {
		s := strings.TrimSpace(doc.Find(sel).First().Text())
		if utf8.RuneCountInString(s) > minSelectorLen {
			out = s
			break
		}
	}
	if out == "" {
		out = doc.Find("body").Text()
	}

	out = text.Clean(out)
	if utf8.RuneCountInString(out) < text.MinContentLength {
		return "", ErrInsufficientContent
	}
	return out, nil
}
