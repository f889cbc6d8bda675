package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"decoder/internal/ledger"
	"decoder/internal/middleware"
)

type LedgerCounter interface {
	CountByStatus(ctx context.Context) (map[ledger.Status]int, error)
}

type JobCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	ledger LedgerCounter
	jobs   JobCounter
}

func NewHandler(l LedgerCounter, j JobCounter) *Handler {
	return &Handler{ledger: l, jobs: j}
}

type StatsResponse struct {
	Messages   map[ledger.Status]int `json:"messages"`
	Published  int                   `json:"published"`
	FailedJobs int                   `json:"failed_jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slog.InfoContext(ctx, "getting stats")

	counts, err := h.ledger.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count processed messages", "error", err)
		h.writeError(ctx, w, "internal error", "failed to count processed messages", http.StatusInternalServerError)
		return
	}

	jCount, err := h.jobs.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err)
		h.writeError(ctx, w, "internal error", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Messages:   counts,
		Published:  counts[ledger.StatusPublished],
		FailedJobs: jCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, label, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"success":   false,
		"error":     label,
		"message":   message,
		"requestId": middleware.GetRequestID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
