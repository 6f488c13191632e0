package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCompleter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Equal(t, 512, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  # Title\n## Summary  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewHTTPCompleter(Config{URL: srv.URL, APIKey: "secret", Model: "test-model", MaxTokens: 100})
	out, err := c.Complete(context.Background(), Request{
		System:    "sys",
		Messages:  []Message{{Role: "user", Content: "hi"}},
		MaxTokens: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, "# Title\n## Summary", out)
}

func TestHTTPCompleter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "http status", status: http.StatusBadGateway, body: `upstream down`, wantErr: ErrCompletion},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"quota"}}`, wantErr: ErrCompletion},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: ErrParse},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: ErrParse},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":" "}}]}`, wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewHTTPCompleter(Config{URL: srv.URL})
			_, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPCompleter_NoMessages(t *testing.T) {
	c := NewHTTPCompleter(Config{})
	_, err := c.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrCompletion)
}
