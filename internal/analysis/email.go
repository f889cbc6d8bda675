package analysis

import (
	"fmt"
	"strings"
)

// Message is the part of an inbound email the analyzer sees.
type Message struct {
	Subject     string
	From        string
	Date        string
	Text        string
	HTML        string
	Attachments []string
}

// EmailContent renders m as the plain-text block handed to the Email
// framework. Text is preferred over HTML.
func EmailContent(m Message) string {
	body := m.Text
	if strings.TrimSpace(body) == "" {
		body = m.HTML
	}
	if strings.TrimSpace(body) == "" {
		body = "Sem conteúdo"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ASSUNTO: %s\n\nDE: %s\n\nDATA: %s\n\nCONTEÚDO:\n%s", m.Subject, m.From, m.Date, body)
	if len(m.Attachments) > 0 {
		fmt.Fprintf(&b, "\n\nANEXOS: %s", strings.Join(m.Attachments, ", "))
	}
	return strings.TrimSpace(b.String())
}
