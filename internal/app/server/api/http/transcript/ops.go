package transcript

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) fetchOp() huma.Operation {
	return huma.Operation{
		OperationID: "transcript-fetch",
		Method:      http.MethodGet,
		Path:        "/api/v1/transcript",
		Summary:     "Субтитры видео YouTube",
		Description: "Загружает страницу видео, выбирает дорожку субтитров и возвращает текст с сегментами.",
		Tags:        []string{"transcript"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
		Middlewares: h.middleware,
	}
}
