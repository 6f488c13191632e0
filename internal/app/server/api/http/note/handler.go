package note

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/note"
)

// folderNone значение folder_id для выборки заметок без папки
const folderNone = "none"

type Handler struct {
	service    note.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service note.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "note_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.youtubeOp(), h.youtube)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.favoriteOp(), h.favorite)
	huma.Register(api, h.uploadOp(), h.upload)
	huma.Register(api, h.sourceOp(), h.source)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	notes, err := h.service.ListNotes(ctx, userID, toFilter(input))
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &listOutput{Body: notes}, nil
}

func toFilter(input *listInput) note.Filter {
	f := note.Filter{
		Tag:        input.Tag,
		SourceType: note.SourceType(input.SourceType),
		Query:      input.Query,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	switch input.FolderID {
	case "":
	case folderNone:
		root := ""
		f.FolderID = &root
	default:
		id := input.FolderID
		f.FolderID = &id
	}
	if input.Favorite != "" {
		fav := input.Favorite == "true"
		f.Favorite = &fav
	}
	return f
}

func (h *Handler) find(ctx context.Context, input *idInput) (*noteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.GetNote(ctx, userID, input.ID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &noteOutput{Body: n}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*noteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.CreateNote(ctx, userID, input.Body)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &noteOutput{Body: n}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*noteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.UpdateNote(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &noteOutput{Body: n}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*struct{}, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.DeleteNote(ctx, userID, input.ID); err != nil {
		return nil, apierror.From(h.log, err)
	}
	return nil, nil
}

func (h *Handler) favorite(ctx context.Context, input *idInput) (*noteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.ToggleFavorite(ctx, userID, input.ID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &noteOutput{Body: n}, nil
}

func (h *Handler) youtube(ctx context.Context, input *youtubeInput) (*noteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n, err := h.service.CreateFromYouTube(ctx, userID, input.Body)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	h.log.Info("note created from youtube", slog.String("note_id", n.ID), slog.Int("user_id", userID))
	return &noteOutput{Body: n}, nil
}

func (h *Handler) upload(ctx context.Context, input *uploadInput) (*uploadOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	ticket, err := h.service.RequestUpload(ctx, userID, input.Body)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &uploadOutput{Body: ticket}, nil
}

func (h *Handler) source(ctx context.Context, input *idInput) (*sourceOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	url, exp, err := h.service.SourceURL(ctx, userID, input.ID)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &sourceOutput{Body: SourceResponse{URL: url, ExpiresAt: exp}}, nil
}
