package mailbox_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoder/internal/mailbox"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

const multipartMessage = `From: Maria Silva <maria@example.com>
To: ceo@example.com
Subject: =?UTF-8?Q?Contrato_urgente_=E2=80=93_revis=C3=A3o?=
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain; charset=UTF-8
Content-Transfer-Encoding: quoted-printable

Prazo at=C3=A9 hoje.
--inner
Content-Type: text/html; charset=UTF-8

<p>Prazo até hoje.</p>
--inner--
--outer
Content-Type: application/pdf; name="contrato.pdf"
Content-Disposition: attachment; filename="contrato.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQK
--outer--
`

func TestParse_Multipart(t *testing.T) {
	m, err := mailbox.Parse(crlf(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "Contrato urgente – revisão", m.Subject)
	assert.Equal(t, "Maria Silva <maria@example.com>", m.From)
	assert.Equal(t, "ceo@example.com", m.To)
	assert.Equal(t, "Prazo até hoje.", strings.TrimSpace(m.Text))
	assert.Contains(t, m.HTML, "<p>Prazo até hoje.</p>")

	require.Len(t, m.Attachments, 1)
	a := m.Attachments[0]
	assert.Equal(t, "contrato.pdf", a.Filename)
	assert.Equal(t, "application/pdf", a.ContentType)
	assert.Equal(t, int64(9), a.Size)
	decoded, err := base64.StdEncoding.DecodeString(a.Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4\n", string(decoded))
}

func TestParse_PlainBase64(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("Olá, segue o relatório."))
	raw := "From: a@b.com\nSubject: Relatório\nContent-Type: text/plain; charset=UTF-8\nContent-Transfer-Encoding: base64\n\n" + body + "\n"

	m, err := mailbox.Parse(crlf(raw))
	require.NoError(t, err)
	assert.Equal(t, "Relatório", m.Subject)
	assert.Equal(t, "Olá, segue o relatório.", m.Text)
	assert.Empty(t, m.HTML)
	assert.Empty(t, m.Attachments)
}

func TestParse_NoContentType(t *testing.T) {
	m, err := mailbox.Parse(crlf("From: a@b.com\nSubject: oi\n\ncorpo simples\n"))
	require.NoError(t, err)
	assert.Equal(t, "corpo simples\r\n", m.Text)
}

func TestParse_Invalid(t *testing.T) {
	_, err := mailbox.Parse([]byte("not a message"))
	assert.Error(t, err)
}

func TestAccept(t *testing.T) {
	tests := []struct {
		subject, from string
		want          bool
	}{
		{"Contrato", "maria@example.com", true},
		{"", "maria@example.com", false},
		{"   ", "maria@example.com", false},
		{"Automatic Reply: férias", "maria@example.com", false},
		{"Out of Office", "x@y.com", false},
		{"Resposta automática", "x@y.com", false},
		{"Fatura", "NoReply@bank.com", false},
		{"Fatura", "no-reply@bank.com", false},
	}
	for _, tt := range tests {
		got, reason := mailbox.Accept(tt.subject, tt.from)
		assert.Equal(t, tt.want, got, "%q from %q", tt.subject, tt.from)
		if !tt.want {
			assert.NotEmpty(t, reason)
		}
	}
}

func TestFilter(t *testing.T) {
	t.Run("Empty List Uses Defaults", func(t *testing.T) {
		ok, _ := mailbox.NewFilter([]string{"", "  "}).Accept("Out of office", "x@y.com")
		assert.False(t, ok)
	})

	t.Run("Custom List Replaces Defaults", func(t *testing.T) {
		f := mailbox.NewFilter([]string{"Férias"})
		ok, reason := f.Accept("Em FÉRIAS", "x@y.com")
		assert.False(t, ok)
		assert.Equal(t, "auto-reply: férias", reason)

		ok, _ = f.Accept("Fatura", "noreply@bank.com")
		assert.True(t, ok)
	})
}

func TestEmailPayload(t *testing.T) {
	p := &mailbox.EmailPayload{Subject: "s", From: "f", Attachments: []mailbox.Attachment{
		{Filename: "a.pdf", Size: 100}, {Filename: "b.png", Size: 23},
	}}
	assert.NoError(t, p.Validate())
	assert.Equal(t, int64(123), p.AttachmentBytes())
	assert.Equal(t, []string{"a.pdf", "b.png"}, p.AttachmentNames())

	err := (&mailbox.EmailPayload{Subject: "s"}).Validate()
	assert.ErrorIs(t, err, mailbox.ErrInvalidPayload)
	assert.Contains(t, err.Error(), "from")
}
