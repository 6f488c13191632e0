package generate

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/generate"
)

type Handler struct {
	service    generate.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service generate.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "generate_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.generateOp(), h.generate)
	huma.Register(api, h.chatOp(), h.chat)
}

func (h *Handler) generate(ctx context.Context, input *generateInput) (*generateOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	result, err := h.service.Generate(ctx, userID, input.ID, generate.Kind(input.Kind))
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &generateOutput{Body: result}, nil
}

func (h *Handler) chat(ctx context.Context, input *chatInput) (*chatOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	reply, err := h.service.Chat(ctx, userID, input.ID, input.Body.History, input.Body.Message)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	return &chatOutput{Body: ChatResponse{Reply: reply}}, nil
}
