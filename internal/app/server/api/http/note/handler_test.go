package note

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/note"
	"studynotes/internal/domain/transcript"
)

const (
	testUser = 11
	noteID   = "3f1c2b8e-9a4d-4c1e-8b7a-2d5e6f708192"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListNotes(ctx context.Context, userID int, filter note.Filter) ([]note.Note, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]note.Note), args.Error(1)
}

func (m *MockService) GetNote(ctx context.Context, userID int, id string) (*note.Note, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Note), args.Error(1)
}

func (m *MockService) CreateNote(ctx context.Context, userID int, req note.CreateNoteRequest) (*note.Note, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Note), args.Error(1)
}

func (m *MockService) UpdateNote(ctx context.Context, userID int, id string, req note.UpdateNoteRequest) (*note.Note, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Note), args.Error(1)
}

func (m *MockService) DeleteNote(ctx context.Context, userID int, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockService) ToggleFavorite(ctx context.Context, userID int, id string) (*note.Note, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Note), args.Error(1)
}

func (m *MockService) ListFolders(ctx context.Context, userID int) ([]note.Folder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]note.Folder), args.Error(1)
}

func (m *MockService) CreateFolder(ctx context.Context, userID int, req note.FolderRequest) (*note.Folder, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Folder), args.Error(1)
}

func (m *MockService) UpdateFolder(ctx context.Context, userID int, id string, req note.FolderRequest) (*note.Folder, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Folder), args.Error(1)
}

func (m *MockService) DeleteFolder(ctx context.Context, userID int, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockService) CreateFromYouTube(ctx context.Context, userID int, req note.YouTubeRequest) (*note.Note, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Note), args.Error(1)
}

func (m *MockService) RequestUpload(ctx context.Context, userID int, req note.UploadRequest) (*note.UploadTicket, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.UploadTicket), args.Error(1)
}

func (m *MockService) SourceURL(ctx context.Context, userID int, id string) (string, time.Time, error) {
	args := m.Called(ctx, userID, id)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func withUser(ctx huma.Context, next func(huma.Context)) {
	next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), testUser)))
}

func setup(t *testing.T) (humatest.TestAPI, *MockService) {
	_, api := humatest.New(t)
	svc := new(MockService)
	NewHandler(svc, slog.Default(), huma.Middlewares{withUser}).SetupRoutes(api)
	return api, svc
}

func sampleNote() *note.Note {
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	return &note.Note{
		ID:         noteID,
		UserID:     testUser,
		Title:      "Лекция 1",
		SourceType: note.SourceText,
		Status:     note.StatusReady,
		Tags:       []string{"math"},
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestList_Filters(t *testing.T) {
	api, svc := setup(t)
	fav := true
	root := ""
	svc.On("ListNotes", mock.Anything, testUser, note.Filter{
		FolderID:   &root,
		Favorite:   &fav,
		Tag:        "math",
		SourceType: note.SourceVideo,
		Query:      "лекция",
		Limit:      20,
		Offset:     40,
	}).Return([]note.Note{*sampleNote()}, nil)

	resp := api.Get("/api/v1/notes?folder_id=none&favorite=true&tag=math&source_type=video&q=" +
		url.QueryEscape("лекция") + "&limit=20&offset=40")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var notes []note.Note
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &notes))
	assert.Len(t, notes, 1)
	svc.AssertExpectations(t)
}

func TestToFilter_Defaults(t *testing.T) {
	f := toFilter(&listInput{Limit: 100})
	assert.Nil(t, f.FolderID)
	assert.Nil(t, f.Favorite)

	f = toFilter(&listInput{FolderID: "abc", Favorite: "false"})
	require.NotNil(t, f.FolderID)
	assert.Equal(t, "abc", *f.FolderID)
	require.NotNil(t, f.Favorite)
	assert.False(t, *f.Favorite)
}

func TestCreate(t *testing.T) {
	api, svc := setup(t)
	req := note.CreateNoteRequest{Title: "Лекция 1", SourceType: note.SourceText, Content: "текст"}
	svc.On("CreateNote", mock.Anything, testUser, req).Return(sampleNote(), nil)

	resp := api.Post("/api/v1/notes", map[string]any{
		"title": "Лекция 1", "source_type": "text", "content": "текст",
	})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var got note.Note
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, noteID, got.ID)
}

func TestCreate_InvalidSourceType(t *testing.T) {
	api, svc := setup(t)

	resp := api.Post("/api/v1/notes", map[string]any{"title": "x", "source_type": "fax"})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestFind_Deleted(t *testing.T) {
	api, svc := setup(t)
	svc.On("GetNote", mock.Anything, testUser, noteID).Return(nil, note.ErrDeleted)

	resp := api.Get("/api/v1/notes/" + noteID)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "note was deleted")
}

func TestUpdate_VersionConflict(t *testing.T) {
	api, svc := setup(t)
	title := "Новое"
	svc.On("UpdateNote", mock.Anything, testUser, noteID, note.UpdateNoteRequest{Version: 1, Title: &title}).
		Return(nil, note.ErrVersionConflict)

	resp := api.Patch("/api/v1/notes/"+noteID, map[string]any{"version": 1, "title": "Новое"})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestDelete(t *testing.T) {
	api, svc := setup(t)
	svc.On("DeleteNote", mock.Anything, testUser, noteID).Return(nil)

	resp := api.Delete("/api/v1/notes/" + noteID)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	svc.AssertExpectations(t)
}

func TestFavorite(t *testing.T) {
	api, svc := setup(t)
	n := sampleNote()
	n.Favorite = true
	n.Version = 2
	svc.On("ToggleFavorite", mock.Anything, testUser, noteID).Return(n, nil)

	resp := api.Post("/api/v1/notes/" + noteID + "/favorite")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"favorite":true`)
}

func TestYouTube_NoCaptions(t *testing.T) {
	api, svc := setup(t)
	svc.On("CreateFromYouTube", mock.Anything, testUser, note.YouTubeRequest{URL: "https://youtu.be/dQw4w9WgXcQ"}).
		Return(nil, transcript.ErrNoCaptions)

	resp := api.Post("/api/v1/notes/youtube", map[string]any{"url": "https://youtu.be/dQw4w9WgXcQ"})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpload_StorageDisabled(t *testing.T) {
	api, svc := setup(t)
	svc.On("RequestUpload", mock.Anything, testUser, note.UploadRequest{Filename: "a.mp3"}).
		Return(nil, note.ErrStorageDisabled)

	resp := api.Post("/api/v1/uploads", map[string]any{"filename": "a.mp3"})

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestSource(t *testing.T) {
	api, svc := setup(t)
	exp := time.Date(2025, 4, 2, 10, 15, 0, 0, time.UTC)
	svc.On("SourceURL", mock.Anything, testUser, noteID).Return("https://s3.local/notes/x?sig=1", exp, nil)

	resp := api.Get("/api/v1/notes/" + noteID + "/source")

	require.Equal(t, http.StatusOK, resp.Code)
	var got SourceResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "https://s3.local/notes/x?sig=1", got.URL)
	assert.True(t, exp.Equal(got.ExpiresAt))
}

func TestHandlers_RequireUser(t *testing.T) {
	_, api := humatest.New(t)
	svc := new(MockService)
	NewHandler(svc, slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/api/v1/notes")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
