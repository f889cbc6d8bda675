package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"decoder/internal/analysis"
	"decoder/internal/content"
	"decoder/internal/middleware"
)

const maxFormMemory = 12 << 20

type Handler struct {
	service *Service
	maxBody int64
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s, maxBody: content.MaxPDFBytes + 1<<20}
}

type jsonRequest struct {
	InputType string `json:"inputType"`
	Content   string `json:"content"`
	URL       string `json:"url"`
	Framework string `json:"framework"`
}

// Decode handles POST /decode. JSON bodies carry text or a URL; multipart
// forms may also carry a PDF in the "file" field.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	in, err := h.parse(r)
	if err != nil {
		slog.WarnContext(ctx, "invalid decode request", "error", err)
		h.writeError(ctx, w, err)
		return
	}

	res, err := h.service.Decode(ctx, in)
	if err != nil {
		slog.ErrorContext(ctx, "decode failed", "input", in.Type, "error", err)
		h.writeError(ctx, w, err)
		return
	}

	h.write(ctx, w, http.StatusOK, map[string]any{
		"success":   true,
		"analysis":  res.Analysis,
		"framework": res.Framework,
		"stats":     res.Stats,
	})
}

func (h *Handler) parse(r *http.Request) (Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var in Input
	var framework string
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return in, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		in.Type = InputType(r.FormValue("inputType"))
		in.Text = r.FormValue("text")
		in.URL = r.FormValue("url")
		framework = r.FormValue("framework")
		if in.Type == InputPDF {
			f, _, err := r.FormFile("file")
			if err != nil {
				return in, fmt.Errorf("%w: file is required", ErrInvalidInput)
			}
			defer f.Close()
			if in.PDF, err = io.ReadAll(f); err != nil {
				return in, err
			}
		}
	} else {
		var req jsonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return in, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		in.Type = InputType(req.InputType)
		in.Text = req.Content
		in.URL = req.URL
		framework = req.Framework
	}

	fw, err := analysis.ParseFramework(framework)
	if err != nil {
		return in, err
	}
	in.Framework = fw
	return in, nil
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	label := "failed to process document"
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, analysis.ErrUnknownFramework):
		status, label = http.StatusBadRequest, "invalid input"
	case errors.Is(err, content.ErrInsufficientContent):
		status, label = http.StatusBadRequest, "insufficient content"
	case errors.Is(err, content.ErrTooLarge), errors.As(err, &tooBig):
		status, label = http.StatusBadRequest, "content too large"
	case errors.Is(err, analysis.ErrNotConfigured):
		label = "analyzer not configured"
	}
	h.write(ctx, w, status, map[string]any{
		"success":   false,
		"error":     label,
		"message":   err.Error(),
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
