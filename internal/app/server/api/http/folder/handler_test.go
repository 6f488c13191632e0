package folder

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/note"
)

const folderID = "0b9d6a52-54b1-4b8e-9a7e-0e3f3c1d2a11"

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) ListFolders(ctx context.Context, userID int) ([]note.Folder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]note.Folder), args.Error(1)
}

func (m *MockFolderService) CreateFolder(ctx context.Context, userID int, req note.FolderRequest) (*note.Folder, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Folder), args.Error(1)
}

func (m *MockFolderService) UpdateFolder(ctx context.Context, userID int, id string, req note.FolderRequest) (*note.Folder, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*note.Folder), args.Error(1)
}

func (m *MockFolderService) DeleteFolder(ctx context.Context, userID int, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func setup(t *testing.T) (humatest.TestAPI, *MockFolderService) {
	_, api := humatest.New(t)
	svc := new(MockFolderService)
	withUser := func(ctx huma.Context, next func(huma.Context)) {
		next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), 4)))
	}
	NewHandler(svc, slog.Default(), huma.Middlewares{withUser}).SetupRoutes(api)
	return api, svc
}

func TestList(t *testing.T) {
	api, svc := setup(t)
	svc.On("ListFolders", mock.Anything, 4).Return([]note.Folder{
		{ID: folderID, Name: "Физика", Color: "#4A90E2", Version: 1},
	}, nil)

	resp := api.Get("/api/v1/folders")

	require.Equal(t, http.StatusOK, resp.Code)
	var got []note.Folder
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Физика", got[0].Name)
}

func TestCreate_InvalidColor(t *testing.T) {
	api, svc := setup(t)
	svc.On("CreateFolder", mock.Anything, 4, note.FolderRequest{Name: "Физика", Color: "blue"}).
		Return(nil, note.ErrInvalidInput)

	resp := api.Post("/api/v1/folders", map[string]any{"name": "Физика", "color": "blue"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdate(t *testing.T) {
	api, svc := setup(t)
	req := note.FolderRequest{Name: "Химия", Version: 1}
	svc.On("UpdateFolder", mock.Anything, 4, folderID, req).
		Return(&note.Folder{ID: folderID, Name: "Химия", Version: 2}, nil)

	resp := api.Patch("/api/v1/folders/"+folderID, map[string]any{"name": "Химия", "version": 1})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"version":2`)
}

func TestDelete_NotFound(t *testing.T) {
	api, svc := setup(t)
	svc.On("DeleteFolder", mock.Anything, 4, folderID).Return(note.ErrFolderNotFound)

	resp := api.Delete("/api/v1/folders/" + folderID)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDelete(t *testing.T) {
	api, svc := setup(t)
	svc.On("DeleteFolder", mock.Anything, 4, folderID).Return(nil)

	resp := api.Delete("/api/v1/folders/" + folderID)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}
