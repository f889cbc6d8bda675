package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"decoder/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobs, err := h.service.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list jobs", "error", err)
		h.writeError(ctx, w, "internal server error", err.Error(), http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []Job{}
	}

	h.write(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"data":    jobs,
		"meta":    map[string]int{"count": len(jobs)},
	})
}

func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	slog.InfoContext(ctx, "retrying job", "id", id)

	if err := h.service.Retry(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to retry job", "id", id, "error", err)
		if errors.Is(err, ErrNotFound) {
			h.writeError(ctx, w, "not found", "job not found", http.StatusNotFound)
			return
		}
		h.writeError(ctx, w, "internal server error", err.Error(), http.StatusInternalServerError)
		return
	}

	h.write(ctx, w, http.StatusOK, map[string]any{"success": true, "message": "job retried"})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, label, message string, status int) {
	h.write(ctx, w, status, map[string]any{
		"success":   false,
		"error":     label,
		"message":   message,
		"requestId": middleware.GetRequestID(ctx),
	})
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
