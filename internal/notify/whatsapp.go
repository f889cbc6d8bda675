package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Twilio error codes with a dedicated meaning.
const (
	codeAuth              = 20003
	codeInvalidTo         = 21211
	codeChannelNotEnabled = 21608
)

var priorityEmoji = map[string]string{
	"Alta":  "🔴",
	"Média": "🟡",
	"Baixa": "🟢",
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type WhatsApp struct {
	api      messageCreator
	from, to string
}

var _ Notifier = (*WhatsApp)(nil)

// NewWhatsApp returns ErrNotConfigured unless every credential and both
// numbers are present.
func NewWhatsApp(accountSID, authToken, from, to string) (*WhatsApp, error) {
	if accountSID == "" || authToken == "" || from == "" || to == "" {
		return nil, ErrNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsApp{api: client.Api, from: from, to: to}, nil
}

func (w *WhatsApp) Notify(ctx context.Context, n Notification) (*Result, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(w.from)
	params.SetTo(w.to)
	params.SetBody(FormatMessage(n))

	msg, err := w.api.CreateMessage(params)
	if err != nil {
		slog.ErrorContext(ctx, "whatsapp notification failed", "error", err)
		return nil, translateTwilio(err)
	}

	res := &Result{Status: Sent}
	if msg.Sid != nil {
		res.MessageID = *msg.Sid
	}
	if msg.Status != nil {
		res.Detail = *msg.Status
	}
	slog.InfoContext(ctx, "whatsapp notification sent", "sid", res.MessageID, "status", res.Detail)
	return res, nil
}

// FormatMessage renders the notification text.
func FormatMessage(n Notification) string {
	emoji, ok := priorityEmoji[n.Priority]
	if !ok {
		emoji = "⚪"
	}
	title := "Nova Análise de Email"
	if n.Idempotent {
		title = "Análise Atualizada"
	}
	return fmt.Sprintf("%s *%s*\n\n📧 *Assunto:* %s\n\n👤 *De:* %s\n\n🎯 *Prioridade:* %s\n\n📝 *Ver análise completa:*\n%s\n\n_Processado automaticamente pelo Executive Decoder_",
		emoji, title, n.Subject, n.From, n.Priority, n.DocumentURL)
}

func translateTwilio(err error) error {
	var rest *twclient.TwilioRestError
	if !errors.As(err, &rest) {
		return fmt.Errorf("twilio: %w", err)
	}
	switch rest.Code {
	case codeAuth:
		return fmt.Errorf("twilio: %s: %w", rest.Message, ErrAuth)
	case codeInvalidTo:
		return fmt.Errorf("twilio: %s: %w", rest.Message, ErrInvalidDestination)
	case codeChannelNotEnabled:
		return fmt.Errorf("twilio: %s: %w", rest.Message, ErrChannelNotEnabled)
	}
	return fmt.Errorf("twilio: code %d: %w", rest.Code, err)
}
