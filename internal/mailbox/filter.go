package mailbox

import "strings"

// DefaultAutoReplyIndicators are matched against subject and sender when no
// list is configured.
var DefaultAutoReplyIndicators = []string{
	"automatic reply",
	"out of office",
	"resposta automática",
	"fora do escritório",
	"noreply",
	"no-reply",
}

// Filter rejects messages with an empty subject or an auto-reply indicator in
// the subject or sender. Matching is case-insensitive.
type Filter struct {
	indicators []string
}

// NewFilter builds a Filter over indicators. Blank entries are dropped; an
// empty list falls back to DefaultAutoReplyIndicators.
func NewFilter(indicators []string) *Filter {
	var out []string
	for _, ind := range indicators {
		if ind = strings.ToLower(strings.TrimSpace(ind)); ind != "" {
			out = append(out, ind)
		}
	}
	if len(out) == 0 {
		out = DefaultAutoReplyIndicators
	}
	return &Filter{indicators: out}
}

// Accept decides whether a message is worth analysing. The reason explains a
// rejection.
func (f *Filter) Accept(subject, from string) (bool, string) {
	if strings.TrimSpace(subject) == "" {
		return false, "empty subject"
	}
	s, fr := strings.ToLower(subject), strings.ToLower(from)
	for _, ind := range f.indicators {
		if strings.Contains(s, ind) || strings.Contains(fr, ind) {
			return false, "auto-reply: " + ind
		}
	}
	return true, ""
}

// Accept runs the default filter.
func Accept(subject, from string) (bool, string) {
	return defaultFilter.Accept(subject, from)
}

var defaultFilter = NewFilter(nil)
