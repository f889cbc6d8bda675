package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"decoder/internal/middleware"
)

type fakeCreator struct {
	params *openapi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	sid, status := "SM123", "queued"
	return &openapi.ApiV2010Message{Sid: &sid, Status: &status}, nil
}

func TestWhatsApp_Notify(t *testing.T) {
	fc := &fakeCreator{}
	w := &WhatsApp{api: fc, from: "whatsapp:+1000", to: "whatsapp:+2000"}

	res, err := w.Notify(context.Background(), Notification{
		Subject: "Contrato Urgente", From: "a@b.com", Priority: "Alta", DocumentURL: "https://notion.so/p1",
	})
	require.NoError(t, err)
	assert.Equal(t, Sent, res.Status)
	assert.Equal(t, "SM123", res.MessageID)
	assert.Equal(t, "queued", res.Detail)

	assert.Equal(t, "whatsapp:+1000", *fc.params.From)
	assert.Equal(t, "whatsapp:+2000", *fc.params.To)
	assert.Contains(t, *fc.params.Body, "🔴 *Nova Análise de Email*")
	assert.Contains(t, *fc.params.Body, "https://notion.so/p1")
}

func TestWhatsApp_ErrorCodes(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{20003, ErrAuth},
		{21211, ErrInvalidDestination},
		{21608, ErrChannelNotEnabled},
	}
	for _, tt := range tests {
		w := &WhatsApp{api: &fakeCreator{err: &twclient.TwilioRestError{Code: tt.code, Message: "x"}}}
		_, err := w.Notify(context.Background(), Notification{})
		assert.ErrorIs(t, err, tt.want)
	}

	boom := errors.New("network down")
	w := &WhatsApp{api: &fakeCreator{err: boom}}
	_, err := w.Notify(context.Background(), Notification{})
	assert.ErrorIs(t, err, boom)
}

func TestNewWhatsApp_NotConfigured(t *testing.T) {
	_, err := NewWhatsApp("sid", "", "from", "to")
	assert.ErrorIs(t, err, ErrNotConfigured)

	w, err := NewWhatsApp("sid", "token", "from", "to")
	require.NoError(t, err)
	assert.NotNil(t, w)
}

func TestFormatMessage(t *testing.T) {
	assert.Contains(t, FormatMessage(Notification{Priority: "Média"}), "🟡")
	assert.Contains(t, FormatMessage(Notification{Priority: "Baixa"}), "🟢")
	assert.Contains(t, FormatMessage(Notification{Priority: "?"}), "⚪")
	assert.Contains(t, FormatMessage(Notification{Idempotent: true}), "Análise Atualizada")
}

func TestDisabled(t *testing.T) {
	res, err := Disabled{}.Notify(context.Background(), Notification{})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Status)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	return m.Called(topic, body).Error(0)
}

func TestEvent_Notify(t *testing.T) {
	pub := new(MockPublisher)
	var sent []byte
	pub.On("Publish", "document.published", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]byte)
	}).Return(nil)

	ctx := middleware.WithRequestID(context.Background(), "req-1")
	res, err := NewEvent(pub, "document.published").Notify(ctx, Notification{DocumentID: "p1", Idempotent: true})
	require.NoError(t, err)
	assert.Equal(t, Sent, res.Status)

	var got Notification
	require.NoError(t, json.Unmarshal(sent, &got))
	assert.Equal(t, "p1", got.DocumentID)
	assert.Equal(t, "req-1", got.RequestID)
	assert.True(t, got.Idempotent)
}

func TestEvent_PublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nsqd down"))

	_, err := NewEvent(pub, "t").Notify(context.Background(), Notification{})
	assert.Error(t, err)

	_, err = NewEvent(nil, "t").Notify(context.Background(), Notification{})
	assert.Error(t, err)
}
