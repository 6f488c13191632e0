package folder

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/note"
)

// FolderService часть сервиса заметок, работающая с папками
type FolderService interface {
	ListFolders(ctx context.Context, userID int) ([]note.Folder, error)
	CreateFolder(ctx context.Context, userID int, req note.FolderRequest) (*note.Folder, error)
	UpdateFolder(ctx context.Context, userID int, id string, req note.FolderRequest) (*note.Folder, error)
	DeleteFolder(ctx context.Context, userID int, id string) error
}

type Handler struct {
	service    FolderService
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service FolderService, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "folder_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	folders, err := h.service.ListFolders(ctx, userID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &listOutput{Body: folders}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*folderOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	f, err := h.service.CreateFolder(ctx, userID, input.Body)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &folderOutput{Body: f}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*folderOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	f, err := h.service.UpdateFolder(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &folderOutput{Body: f}, nil
}

// delete помечает папку удаленной, заметки из нее переходят в корень
func (h *Handler) delete(ctx context.Context, input *idInput) (*struct{}, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.DeleteFolder(ctx, userID, input.ID); err != nil {
		return nil, apierror.From(h.log, err)
	}
	return nil, nil
}
