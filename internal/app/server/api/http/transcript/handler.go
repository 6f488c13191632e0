package transcript

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	"studynotes/internal/domain/transcript"
)

type Handler struct {
	fetcher    transcript.Fetcher
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(fetcher transcript.Fetcher, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		fetcher:    fetcher,
		log:        log.With("component", "transcript_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.fetchOp(), h.fetch)
}

func (h *Handler) fetch(ctx context.Context, input *fetchInput) (*fetchOutput, error) {
	t, err := h.fetcher.Fetch(ctx, input.URL, input.Language)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}
	h.log.Debug("transcript fetched",
		slog.String("video_id", t.VideoID),
		slog.Int("segments", len(t.Segments)))
	return &fetchOutput{Body: t}, nil
}
