package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	t.Run("Generates", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := r.Context().Value(RequestIDKey).(string)
			assert.True(t, ok)
			assert.NotEmpty(t, id)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("Propagates Header", func(t *testing.T) {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})
}

func TestGetRequestID_Default(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestID(httptest.NewRequest("GET", "/", nil).Context()))
}

func TestRequireSecret(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"Match", "s3cret", "s3cret", http.StatusNoContent},
		{"Mismatch", "s3cret", "nope", http.StatusUnauthorized},
		{"Missing Header", "s3cret", "", http.StatusUnauthorized},
		{"Missing Server Secret", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/automation/webhook", nil)
			if tt.header != "" {
				req.Header.Set(SecretHeader, tt.header)
			}
			w := httptest.NewRecorder()
			RequireSecret(tt.secret, ok).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"success":false`)
				assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}
