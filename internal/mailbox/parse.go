package mailbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// Message is a parsed RFC 2822 message.
type Message struct {
	Subject     string
	From        string
	To          string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Parse reads a raw message. The first text/plain and text/html parts become
// the bodies; parts with a filename or an attachment disposition become
// attachments.
func Parse(raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}

	m := &Message{
		Subject: decodeHeader(msg.Header.Get("Subject")),
		From:    decodeHeader(msg.Header.Get("From")),
		To:      decodeHeader(msg.Header.Get("To")),
	}
	if err := m.walk(textproto.MIMEHeader(msg.Header), msg.Body); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeHeader(h string) string {
	if h == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(h)
	if err != nil {
		return h
	}
	return decoded
}

func (m *Message) walk(h textproto.MIMEHeader, body io.Reader) error {
	ct := h.Get("Content-Type")
	if ct == "" {
		ct = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if params["boundary"] == "" {
			return nil
		}
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read part: %w", err)
			}
			if err := m.walk(part.Header, part); err != nil {
				return err
			}
		}
	}

	data, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if name := filename(h, params); name != "" {
		m.Attachments = append(m.Attachments, Attachment{
			Filename:    name,
			ContentType: mediaType,
			Size:        int64(len(data)),
			Content:     base64.StdEncoding.EncodeToString(data),
		})
		return nil
	}

	switch mediaType {
	case "text/plain":
		if m.Text == "" {
			m.Text = string(data)
		}
	case "text/html":
		if m.HTML == "" {
			m.HTML = string(data)
		}
	}
	return nil
}

// decodeTransfer undoes base64 and quoted-printable. multipart.Reader already
// strips quoted-printable from parts, leaving the header absent.
func decodeTransfer(enc string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	}
	return r
}

func filename(h textproto.MIMEHeader, ctParams map[string]string) string {
	if cd := h.Get("Content-Disposition"); cd != "" {
		disp, params, err := mime.ParseMediaType(cd)
		if err == nil {
			if params["filename"] != "" {
				return decodeHeader(params["filename"])
			}
			if disp == "attachment" {
				if ctParams["name"] != "" {
					return decodeHeader(ctParams["name"])
				}
				return "unnamed"
			}
		}
	}
	if ctParams["name"] != "" {
		return decodeHeader(ctParams["name"])
	}
	return ""
}
