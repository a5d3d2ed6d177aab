package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedMux(t *testing.T, apiKey string, exempt ...string) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/ledger", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Auth(apiKey, exempt...)(mux)
}

func TestAuth(t *testing.T) {
	h := authedMux(t, "s3cret", "/api/health")

	get := func(path string, header, value string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(header, value)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	t.Run("missing key is rejected", func(t *testing.T) {
		w := get("/api/ledger", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		w := get("/api/ledger", "X-API-Key", "nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("X-API-Key header accepted", func(t *testing.T) {
		w := get("/api/ledger", "X-API-Key", "s3cret")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bearer token accepted case-insensitively", func(t *testing.T) {
		w := get("/api/ledger", "Authorization", "bearer s3cret")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("health path exempt from auth", func(t *testing.T) {
		w := get("/api/health", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty key disables auth", func(t *testing.T) {
		open := authedMux(t, "")
		req := httptest.NewRequest(http.MethodGet, "/api/ledger", nil)
		w := httptest.NewRecorder()
		open.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
