package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"decoder/internal/middleware"
	"decoder/internal/publish"
)

const maxBodyBytes = 4 << 20

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

type response struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	*Result
}

// ManualExport handles POST /automation/manual-export.
func (h *Handler) ManualExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "invalid body", err.Error(), nil)
		return
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "manual export rejected", "error", err)
		h.writeError(ctx, w, http.StatusBadRequest, "invalid request", err.Error(), nil)
		return
	}

	res, err := h.service.Export(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "manual export failed", "error", err)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, publish.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, publish.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
		h.writeError(ctx, w, status, "export failed", err.Error(), res)
		return
	}

	h.write(ctx, w, http.StatusOK, response{Success: true, Result: res})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, status int, label, message string, partial *Result) {
	h.write(ctx, w, status, response{
		Success:   false,
		Error:     label,
		Message:   message,
		RequestID: middleware.GetRequestID(ctx),
		Result:    partial,
	})
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
