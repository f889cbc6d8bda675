package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"decoder/internal/analysis"
	"decoder/internal/mailbox"
	"decoder/internal/middleware"
	"decoder/internal/notify"
	"decoder/internal/publish"
)

const (
	DefaultTimeout = 60 * time.Second
	maxBodyBytes   = 32 << 20
)

type Handler struct {
	service *Service
	timeout time.Duration
}

func NewHandler(s *Service, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{service: s, timeout: timeout}
}

type response struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	ProcessingTime int64  `json:"processingTime"`
	RequestID      string `json:"requestId"`
	*Result
}

// Webhook handles POST /automation/webhook. The shared secret is checked by
// middleware.RequireSecret before this runs.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var payload mailbox.EmailPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		slog.WarnContext(ctx, "invalid webhook body", "error", err)
		h.writeError(ctx, w, fmt.Errorf("%w: %w", mailbox.ErrInvalidPayload, err), nil, start)
		return
	}
	if payload.RequestID != "" && middleware.GetRequestID(ctx) == "unknown" {
		ctx = middleware.WithRequestID(ctx, payload.RequestID)
	}

	res, err := h.service.Process(ctx, &payload)
	if err != nil {
		slog.ErrorContext(ctx, "email processing failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		h.writeError(ctx, w, err, res, start)
		return
	}

	slog.InfoContext(ctx, "email processed", "document_id", res.Notion.ID, "idempotent", res.Idempotent, "duration_ms", time.Since(start).Milliseconds())
	message := "Email processado com sucesso"
	if res.Idempotent {
		message = "Análise anexada ao documento existente"
	}
	h.write(ctx, w, http.StatusOK, response{
		Success:        true,
		Message:        message,
		ProcessingTime: time.Since(start).Milliseconds(),
		RequestID:      middleware.GetRequestID(ctx),
		Result:         res,
	})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, partial *Result, start time.Time) {
	status, label := classify(err)
	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		message = fmt.Sprintf("timed out after %s: %v", time.Since(start).Round(time.Millisecond), err)
	}
	h.write(ctx, w, status, response{
		Success:        false,
		Error:          label,
		Message:        message,
		ProcessingTime: time.Since(start).Milliseconds(),
		RequestID:      middleware.GetRequestID(ctx),
		Result:         partial,
	})
}

// classify maps a pipeline error to an HTTP status and a short label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, mailbox.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid payload"
	case errors.Is(err, publish.ErrValidation):
		return http.StatusBadRequest, "document rejected by store"
	case errors.Is(err, publish.ErrUnauthorized), errors.Is(err, notify.ErrAuth):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, "timeout"
	case errors.Is(err, analysis.ErrNotConfigured), errors.Is(err, publish.ErrNotConfigured):
		return http.StatusInternalServerError, "not configured"
	case errors.Is(err, ErrNotify):
		return http.StatusInternalServerError, "notification failed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
