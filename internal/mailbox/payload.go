// Package mailbox watches a Gmail inbox and hands each new message to the
// intake pipeline.
package mailbox

import (
	"errors"
	"strings"
)

var ErrInvalidPayload = errors.New("invalid payload")

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	// Content is the base64 encoded body.
	Content string `json:"content,omitempty"`
}

// EmailPayload is what the watcher sends to the intake endpoint or queue.
// Date is the processing time, not the message date.
type EmailPayload struct {
	MessageID   string       `json:"messageId,omitempty"`
	Subject     string       `json:"subject"`
	From        string       `json:"from"`
	To          string       `json:"to,omitempty"`
	Date        string       `json:"date"`
	Text        string       `json:"text"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments"`
	RequestID   string       `json:"requestId,omitempty"`
}

// Validate requires subject and sender.
func (p *EmailPayload) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(p.From) == "" {
		missing = append(missing, "from")
	}
	if len(missing) > 0 {
		return errors.Join(ErrInvalidPayload, errors.New("missing "+strings.Join(missing, ", ")))
	}
	return nil
}

func (p *EmailPayload) AttachmentBytes() int64 {
	var n int64
	for _, a := range p.Attachments {
		n += a.Size
	}
	return n
}

func (p *EmailPayload) AttachmentNames() []string {
	names := make([]string, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		names = append(names, a.Filename)
	}
	return names
}
