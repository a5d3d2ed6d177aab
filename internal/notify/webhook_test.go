package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordSender_Send(t *testing.T) {
	t.Run("posts bolded content to the webhook", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		s := NewDiscordSender(srv.URL)
		require.NoError(t, s.Send(context.Background(), "scan done", "3 findings"))
		assert.Equal(t, "**scan done**\n3 findings", got["content"])
	})

	t.Run("non-2xx status surfaces the response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		err := NewDiscordSender(srv.URL).Send(context.Background(), "t", "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "discord")
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestTelegramSender_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "chat-1", got["chat_id"])
		assert.Equal(t, "Markdown", got["parse_mode"])
		assert.Equal(t, "*alert*\nbody", got["text"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("token", "chat-1")
	// Point the Bot API base at the test server.
	s.client = &http.Client{Transport: rewriteHost(srv.URL)}

	require.NoError(t, s.Send(context.Background(), "alert", "body"))
}

// rewriteHost redirects every request to the test server regardless of the
// URL the sender built.
func rewriteHost(base string) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		target, err := http.NewRequestWithContext(r.Context(), r.Method, base, r.Body)
		if err != nil {
			return nil, err
		}
		target.Header = r.Header
		return http.DefaultTransport.RoundTrip(target)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
