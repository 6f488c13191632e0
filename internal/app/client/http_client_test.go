package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/sync"
)

func newTestHTTPClient(t *testing.T, handler http.HandlerFunc) *httpClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second, slog.Default())
}

func TestHTTPClient_LoginStoresToken(t *testing.T) {
	var authHeader string
	cl := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/user/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "student@example.com", body["email"])
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = io.WriteString(w, `{"token":"tok-123","status":"Ok"}`)
		case "/api/v1/sync/status":
			authHeader = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, `{"total_notes":4,"storage_limit":100}`)
		default:
			http.NotFound(w, r)
		}
	})

	token, err := cl.Login(context.Background(), "student@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	st, err := cl.SyncStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", authHeader)
	assert.Equal(t, 4, st.TotalNotes)
}

func TestHTTPClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantAuth    bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"status":"Error","error":"Unauthorized"}`, wantMessage: "Unauthorized", wantAuth: true},
		{name: "conflict", status: http.StatusConflict, body: `{"status":"Error","error":"version conflict"}`, wantMessage: "version conflict"},
		{name: "huma detail", status: http.StatusUnprocessableEntity, body: `{"title":"Unprocessable Entity","detail":"validation failed"}`, wantMessage: "validation failed"},
		{name: "no body", status: http.StatusBadGateway, body: ``, wantMessage: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := cl.HealthCheck(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantAuth, errors.Is(err, ErrNotAuthorized))
		})
	}
}

func TestHTTPClient_GetChangesSendsDeviceAndCursor(t *testing.T) {
	cursor := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	until := cursor.Add(time.Hour)

	cl := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sync/changes", r.URL.Path)
		assert.Equal(t, "device-1", r.Header.Get("X-Device-ID"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-01-02T03:04:05Z", body["last_sync_time"])
		assert.Equal(t, "2025-01-02T04:04:05Z", body["until"])
		assert.Equal(t, float64(50), body["limit"])
		assert.Equal(t, "enhanced", body["shape"])

		_, _ = io.WriteString(w, `{"records":[],"has_more":false,"server_time":"2025-01-02T04:04:05Z","total_folders":0,"total_notes":0}`)
	})

	resp, err := cl.GetChanges(context.Background(), "device-1", changesRequest{
		LastSyncTime: cursor,
		Until:        &until,
		Limit:        50,
		Shape:        sync.ShapeEnhancedRecords,
	})
	require.NoError(t, err)
	assert.True(t, until.Equal(resp.ServerTime))
	assert.False(t, resp.HasMore)
}

func TestHTTPClient_ResolveConflictAndTranscript(t *testing.T) {
	cl := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sync/conflicts/12/resolve":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "server", body["resolution"])
			_, _ = io.WriteString(w, `{"status":"Ok"}`)
		case "/api/v1/transcript":
			assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", r.URL.Query().Get("url"))
			assert.Equal(t, "de", r.URL.Query().Get("lang"))
			_, _ = io.WriteString(w, `{"video_id":"dQw4w9WgXcQ","title":"Song","language":"de","segments":[],"text":"hallo"}`)
		default:
			http.NotFound(w, r)
		}
	})

	require.NoError(t, cl.ResolveConflict(context.Background(), 12, sync.ResolveConflictRequest{Resolution: sync.ResolveServer}))

	tr, err := cl.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "de")
	require.NoError(t, err)
	assert.Equal(t, "hallo", tr.Text)
	assert.Equal(t, "dQw4w9WgXcQ", tr.VideoID)
}

func TestHTTPClient_ServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cl := NewHTTPClient(srv.URL, time.Second, slog.Default())
	err := cl.HealthCheck(context.Background())
	assert.ErrorContains(t, err, "server unavailable")
}
