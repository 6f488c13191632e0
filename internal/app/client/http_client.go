package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"studynotes/internal/domain/generate"
	"studynotes/internal/domain/note"
	"studynotes/internal/domain/sync"
	"studynotes/internal/domain/transcript"
)

const userAgent = "studynotes-cli/1.0"

// APIError ответ сервера со статусом 4xx/5xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrNotAuthorized
	}
	return nil
}

type httpClient struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
	token   string
}

func NewHTTPClient(baseURL string, timeout time.Duration, log *slog.Logger) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log:     log.With("component", "http_client"),
		baseURL: baseURL,
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	return h.call(ctx, http.MethodGet, "/api/v1/health", nil, nil, nil)
}

func (h *httpClient) Register(ctx context.Context, email, password string) (int, error) {
	var resp struct {
		ID int `json:"user_id"`
	}
	err := h.call(ctx, http.MethodPost, "/api/v1/user/register", nil, credentials{email, password}, &resp)
	return resp.ID, err
}

func (h *httpClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := h.call(ctx, http.MethodPost, "/api/v1/user/login", nil, credentials{email, password}, &resp); err != nil {
		return "", err
	}
	h.SetToken(resp.Token)
	return resp.Token, nil
}

func (h *httpClient) Logout(ctx context.Context) error {
	return h.call(ctx, http.MethodPost, "/api/v1/user/logout", nil, nil, nil)
}

func (h *httpClient) CreateFromYouTube(ctx context.Context, req note.YouTubeRequest) (*note.Note, error) {
	var n note.Note
	if err := h.call(ctx, http.MethodPost, "/api/v1/notes/youtube", nil, req, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (h *httpClient) Generate(ctx context.Context, noteID string, kind generate.Kind) (*generate.Result, error) {
	var res generate.Result
	path := "/api/v1/notes/" + url.PathEscape(noteID) + "/generate/" + url.PathEscape(string(kind))
	if err := h.call(ctx, http.MethodPost, path, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *httpClient) Chat(ctx context.Context, noteID string, history []generate.Message, message string) (string, error) {
	req := struct {
		History []generate.Message `json:"history,omitempty"`
		Message string             `json:"message"`
	}{history, message}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := h.call(ctx, http.MethodPost, "/api/v1/notes/"+url.PathEscape(noteID)+"/chat", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

func (h *httpClient) Transcript(ctx context.Context, videoURL, lang string) (*transcript.Transcript, error) {
	q := url.Values{"url": {videoURL}}
	if lang != "" {
		q.Set("lang", lang)
	}

	var t transcript.Transcript
	if err := h.call(ctx, http.MethodGet, "/api/v1/transcript?"+q.Encode(), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// changesRequest тело POST /sync/changes
type changesRequest struct {
	LastSyncTime time.Time  `json:"last_sync_time"`
	Until        *time.Time `json:"until,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
	Shape        sync.Shape `json:"shape,omitempty"`
}

// GetChanges получает страницу изменений с сервера
func (h *httpClient) GetChanges(ctx context.Context, deviceID string, req changesRequest) (*sync.GetChangesResponse, error) {
	var resp sync.GetChangesResponse
	if err := h.call(ctx, http.MethodPost, "/api/v1/sync/changes", deviceHeader(deviceID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendBatch отправляет пакет локальных изменений
func (h *httpClient) SendBatch(ctx context.Context, deviceID string, records []sync.EnhancedRecord) (*sync.BatchSyncResponse, error) {
	req := struct {
		Records []sync.EnhancedRecord `json:"records"`
	}{records}

	var resp sync.BatchSyncResponse
	if err := h.call(ctx, http.MethodPost, "/api/v1/sync/batch", deviceHeader(deviceID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *httpClient) SyncStatus(ctx context.Context) (*sync.SyncStatus, error) {
	var st sync.SyncStatus
	if err := h.call(ctx, http.MethodGet, "/api/v1/sync/status", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (h *httpClient) Conflicts(ctx context.Context) ([]sync.Conflict, error) {
	var conflicts []sync.Conflict
	if err := h.call(ctx, http.MethodGet, "/api/v1/sync/conflicts", nil, nil, &conflicts); err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (h *httpClient) ResolveConflict(ctx context.Context, id int, req sync.ResolveConflictRequest) error {
	return h.call(ctx, http.MethodPost, "/api/v1/sync/conflicts/"+strconv.Itoa(id)+"/resolve", nil, req, nil)
}

func (h *httpClient) RegisterDevice(ctx context.Context, deviceID string) error {
	return h.call(ctx, http.MethodPost, "/api/v1/sync/devices", deviceHeader(deviceID), nil, nil)
}

func (h *httpClient) Devices(ctx context.Context) ([]sync.Device, error) {
	var devices []sync.Device
	if err := h.call(ctx, http.MethodGet, "/api/v1/sync/devices", nil, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (h *httpClient) RemoveDevice(ctx context.Context, deviceID string) error {
	return h.call(ctx, http.MethodDelete, "/api/v1/sync/devices/"+url.PathEscape(deviceID), nil, nil, nil)
}

func (h *httpClient) Stats(ctx context.Context) (*sync.SyncStats, error) {
	var st sync.SyncStats
	if err := h.call(ctx, http.MethodGet, "/api/v1/sync/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func deviceHeader(deviceID string) http.Header {
	h := http.Header{}
	if deviceID != "" {
		h.Set("X-Device-ID", deviceID)
	}
	return h
}

func (h *httpClient) call(ctx context.Context, method, path string, header http.Header, body, result any) error {
	resp, err := h.doRequest(ctx, method, path, header, body)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, result)
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, header http.Header, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server unavailable: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	h.log.Debug("response received", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if err := json.Unmarshal(body, &errResp); err == nil {
			switch {
			case errResp.Error != "":
				apiErr.Message = errResp.Error
			case errResp.Detail != "":
				apiErr.Message = errResp.Detail
			}
		}
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
