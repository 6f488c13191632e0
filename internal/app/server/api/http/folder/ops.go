package folder

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "folders-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/folders",
		Summary:     "Список папок",
		Tags:        []string{"folders"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "folders-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/folders",
		Summary:       "Создать папку",
		Tags:          []string{"folders"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "folders-update",
		Method:      http.MethodPatch,
		Path:        "/api/v1/folders/{id}",
		Summary:     "Обновить папку",
		Tags:        []string{"folders"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "folders-delete",
		Method:        http.MethodDelete,
		Path:          "/api/v1/folders/{id}",
		Summary:       "Удалить папку",
		Description:   "Заметки из папки остаются и переходят в корень.",
		Tags:          []string{"folders"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
		Errors:        []int{http.StatusNotFound},
		Middlewares:   h.middleware,
	}
}
