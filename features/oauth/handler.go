// Package oauth runs the Google consent flow that yields the refresh token
// the mailbox watcher is configured with.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"decoder/internal/middleware"
)

var ErrNotConfigured = errors.New("oauth not configured")

var scopes = []string{gmail.MailGoogleComScope, "openid", "email", "profile"}

// NewConfig returns the Google OAuth client, or nil when any of the
// credentials is missing.
func NewConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
}

type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	IDToken      string    `json:"id_token,omitempty"`
}

type Handler struct {
	config *oauth2.Config
}

func NewHandler(cfg *oauth2.Config) *Handler {
	return &Handler{config: cfg}
}

// Init handles GET /oauth/google/init by redirecting to the consent screen.
// Offline access with a forced prompt makes Google issue a refresh token
// every time.
func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	if h.config == nil {
		h.writeError(r.Context(), w, ErrNotConfigured.Error(), "GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI are required")
		return
	}
	url := h.config.AuthCodeURL("", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback handles GET /oauth/google/callback.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.config == nil {
		h.writeError(ctx, w, ErrNotConfigured.Error(), "GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI are required")
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.writeError(ctx, w, e, q.Get("error_description"))
		return
	}
	code := q.Get("code")
	if code == "" {
		h.writeError(ctx, w, "missing code", "")
		return
	}

	tok, err := h.config.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "oauth code exchange failed", "error", err)
		h.writeError(ctx, w, "oauth callback error", err.Error())
		return
	}

	out := Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = id
	}
	if out.RefreshToken == "" {
		slog.WarnContext(ctx, "oauth exchange returned no refresh token")
	}

	h.write(ctx, w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Authorized. Copy the tokens below.",
		"tokens":       out,
		"instructions": "Set refresh_token as GOOGLE_REFRESH_TOKEN for the watch command.",
	})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, label, msg string) {
	resp := map[string]any{
		"success":   false,
		"error":     label,
		"requestId": middleware.GetRequestID(ctx),
	}
	if msg != "" {
		resp["message"] = msg
	}
	h.write(ctx, w, http.StatusBadRequest, resp)
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
