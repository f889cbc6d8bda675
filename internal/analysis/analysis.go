// Package analysis defines the Analyzer contract and assembles the prompts the
// model implementations send.
package analysis

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
)

type Analyzer interface {
	Analyze(ctx context.Context, content string, framework Framework) (string, error)
}

var (
	ErrUnknownFramework = errors.New("unknown framework")
	ErrEmptyResponse    = errors.New("analyzer returned no content")
	ErrNotConfigured    = errors.New("analyzer not configured")
)

// Unavailable stands in when no model credentials are configured.
type Unavailable struct{}

func (Unavailable) Analyze(context.Context, string, Framework) (string, error) {
	return "", ErrNotConfigured
}

type Framework string

const (
	Hybrid         Framework = "hybrid"
	SWOT           Framework = "swot"
	PESTEL         Framework = "pestel"
	Prioritization Framework = "priorization"
	Risk           Framework = "risk"
	BusinessModel  Framework = "business-model"
	// Email is the fixed framework used for inbound messages.
	Email Framework = "email"
)

var frameworks = []Framework{Hybrid, SWOT, PESTEL, Prioritization, Risk, BusinessModel, Email}

var labels = map[Framework]string{
	Hybrid:         "Híbrida",
	SWOT:           "SWOT",
	PESTEL:         "PESTEL",
	Prioritization: "Priorização",
	Risk:           "Riscos",
	BusinessModel:  "Canvas",
	Email:          "Email",
}

// Label is the display name stored on published documents.
func (f Framework) Label() string {
	return labels[f]
}

// ParseFramework accepts the wire name or the display label of a framework.
// An empty name selects Hybrid.
func ParseFramework(s string) (Framework, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Hybrid, nil
	}
	for _, f := range frameworks {
		if string(f) == s || strings.EqualFold(labels[f], s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFramework, s)
}

//go:embed prompts/*.md
var prompts embed.FS

const placeholder = "{content}"

// Prompt fills the framework's template with content. Unknown frameworks fall
// back to the hybrid template.
func Prompt(framework Framework, content string) string {
	tpl, err := prompts.ReadFile("prompts/" + string(framework) + ".md")
	if err != nil {
		tpl, _ = prompts.ReadFile("prompts/" + string(Hybrid) + ".md")
	}
	return strings.Replace(string(tpl), placeholder, content, 1)
}
