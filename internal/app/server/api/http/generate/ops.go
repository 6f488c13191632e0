package generate

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) generateOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-generate",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/{id}/generate/{kind}",
		Summary:     "Сгенерировать учебные материалы",
		Description: "summary пишет ai_content, quiz и flashcards пишут supplementary, mindmap пишет mind_map.",
		Tags:        []string{"generate"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
		Middlewares: h.middleware,
	}
}

func (h *Handler) chatOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-chat",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/{id}/chat",
		Summary:     "Вопрос по содержимому заметки",
		Tags:        []string{"generate"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
		Middlewares: h.middleware,
	}
}
