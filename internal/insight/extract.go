package insight

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Priority string

const (
	High   Priority = "Alta"
	Medium Priority = "Média"
	Low    Priority = "Baixa"
)

type Level string

const (
	LevelHigh   Level = "Alto"
	LevelMedium Level = "Médio"
	LevelLow    Level = "Baixo"
)

// Labels holds the qualitative scores of a prioritization analysis. Empty
// fields were not found.
type Labels struct {
	Impact Level
	Effort Level
	ROI    Level
}

var (
	headingRe    = regexp.MustCompile(`^##+\s+`)
	sectionEndRe = regexp.MustCompile(`^#{2,3}\s`)
	bulletItemRe = regexp.MustCompile(`^[-*]\s+(.+)$`)
	numberedRe   = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	confidenceRe = regexp.MustCompile(`(?i)Score\s+de\s+Confiança[^:]*:\s*(\d{1,2})\s*/\s*10`)
	impactRe     = regexp.MustCompile(`(?i)Impacto\s*:\s*\**\s*(\p{L}+)`)
	effortRe     = regexp.MustCompile(`(?i)Esfor\p{L}*\s*:\s*\**\s*(\p{L}+)`)
	roiRe        = regexp.MustCompile(`(?i)ROI\s*:\s*\**\s*(\p{L}+)`)
)

type Extractor struct {
	rules Rules
}

func New(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Default is an Extractor over the built-in rules.
func Default() *Extractor {
	return New(DefaultRules())
}

// ActionItems scans md for task-like lines. Text under headings naming an
// action section is preferred; without such a heading the whole document is
// scanned. Items keep their first-seen order and are capped at MaxItems.
func (e *Extractor) ActionItems(md string) []string {
	lines := e.sectionLines(md)
	if lines == nil {
		lines = strings.Split(md, "\n")
	}

	seen := map[string]struct{}{}
	var items []string
	for _, raw := range lines {
		item, ok := e.match(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
		if len(items) == e.rules.MaxItems {
			break
		}
	}
	return items
}

func (e *Extractor) sectionLines(md string) []string {
	var out []string
	in := false
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if headingRe.MatchString(trimmed) && containsAny(strings.ToLower(trimmed), e.rules.Sections) {
			in = true
			continue
		}
		if sectionEndRe.MatchString(trimmed) {
			in = false
			continue
		}
		if in && trimmed != "" {
			out = append(out, line)
		}
	}
	return out
}

func (e *Extractor) match(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	if m := bulletItemRe.FindStringSubmatch(line); m != nil {
		return e.long(m[1])
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return e.long(m[1])
	}
	for _, marker := range e.rules.Markers {
		if rest, ok := strings.CutPrefix(line, marker); ok && rest != strings.TrimLeft(rest, " \t") {
			return e.long(rest)
		}
	}
	for _, verb := range e.rules.Verbs {
		if strings.HasPrefix(line, verb) && utf8.RuneCountInString(line) > e.rules.MinVerbLineLength {
			return line, true
		}
	}
	return "", false
}

func (e *Extractor) long(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) > e.rules.MinItemLength
}

// Priority labels the message from its subject and body. A high-priority
// keyword always wins over a low-priority one.
func (e *Extractor) Priority(subject, body string) Priority {
	text := strings.ToLower(subject + " " + body)
	if containsAny(text, e.rules.Priority.High) {
		return High
	}
	if containsAny(text, e.rules.Priority.Low) {
		return Low
	}
	return Medium
}

// Confidence reads a "Score de Confiança ...: N/10" line, clamped to 0..10.
func Confidence(md string) *int {
	m := confidenceRe.FindStringSubmatch(md)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	n = max(0, min(10, n))
	return &n
}

// Prioritization reads the impact, effort and ROI labels.
func Prioritization(md string) Labels {
	return Labels{
		Impact: level(impactRe, md),
		Effort: level(effortRe, md),
		ROI:    level(roiRe, md),
	}
}

func level(re *regexp.Regexp, md string) Level {
	m := re.FindStringSubmatch(md)
	if m == nil {
		return ""
	}
	v := strings.ToLower(m[1])
	switch {
	case strings.Contains(v, "alto"):
		return LevelHigh
	case strings.Contains(v, "médio"), strings.Contains(v, "medio"):
		return LevelMedium
	case strings.Contains(v, "baixo"):
		return LevelLow
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
