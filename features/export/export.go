// Package export publishes an analysis written elsewhere, typically by the
// decode screen, straight to the document store.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"decoder/internal/analysis"
	"decoder/internal/insight"
	"decoder/internal/publish"
	"decoder/internal/text"
)

var ErrInvalidRequest = errors.New("invalid request")

var sourceTypes = map[string]string{
	"texto": "Texto",
	"text":  "Texto",
	"url":   "URL",
	"pdf":   "PDF",
}

type Request struct {
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	From       string `json:"from,omitempty"`
	Date       string `json:"date,omitempty"`
	SourceType string `json:"sourceType,omitempty"`
	Framework  string `json:"framework,omitempty"`
	OriginURL  string `json:"originUrl,omitempty"`

	Tags         []string `json:"tags,omitempty"`
	Deadline     string   `json:"deadline,omitempty"`
	OwnerID      string   `json:"ownerId,omitempty"`
	WhatsAppLink string   `json:"whatsappLink,omitempty"`
}

// Validate trims the required fields and resolves the optional labels.
func (r *Request) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Content = strings.TrimSpace(r.Content)
	if r.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(r.Content) < text.MinManualContentLength {
		return fmt.Errorf("%w: content must have at least %d characters", ErrInvalidRequest, text.MinManualContentLength)
	}
	if r.SourceType != "" {
		label, ok := sourceTypes[strings.ToLower(strings.TrimSpace(r.SourceType))]
		if !ok {
			return fmt.Errorf("%w: unknown source type %q", ErrInvalidRequest, r.SourceType)
		}
		r.SourceType = label
	}
	if r.Framework != "" {
		fw, err := analysis.ParseFramework(r.Framework)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		r.Framework = fw.Label()
	}
	r.Tags = cleanTags(r.Tags)
	if r.Deadline = strings.TrimSpace(r.Deadline); r.Deadline != "" && !validDate(r.Deadline) {
		return fmt.Errorf("%w: deadline must be YYYY-MM-DD or RFC 3339", ErrInvalidRequest)
	}
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.WhatsAppLink = strings.TrimSpace(r.WhatsAppLink)
	return nil
}

// cleanTags trims tags and drops blanks and repeats, keeping the first order.
func cleanTags(tags []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func validDate(s string) bool {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

type Metrics struct {
	AppendedBlocks int `json:"appendedBlocks"`
	TodosCount     int `json:"todosCount"`
}

type Analysis struct {
	ActionItems []string         `json:"actionItems"`
	Priority    insight.Priority `json:"priority"`
}

type Result struct {
	Notion     *publish.Document `json:"notion,omitempty"`
	Metrics    Metrics           `json:"metrics"`
	Analysis   Analysis          `json:"analysis"`
	Idempotent bool              `json:"idempotent"`
}
