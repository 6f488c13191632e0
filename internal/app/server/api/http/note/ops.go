package note

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "Список заметок пользователя",
		Description: "Фильтры по папке, избранному, тегу, типу источника и заголовку. Сортировка по updated_at DESC.",
		Tags:        []string{"notes"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "notes-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/notes",
		Summary:       "Создать заметку",
		Tags:          []string{"notes"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) youtubeOp() huma.Operation {
	return huma.Operation{
		OperationID:   "notes-create-youtube",
		Method:        http.MethodPost,
		Path:          "/api/v1/notes/youtube",
		Summary:       "Создать заметку из видео YouTube",
		Description:   "Загружает субтитры видео и сохраняет их как содержимое заметки.",
		Tags:          []string{"notes", "transcript"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Получить заметку",
		Tags:        []string{"notes"},
		Security:    bearer,
		Errors:      []int{http.StatusNotFound},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-update",
		Method:      http.MethodPatch,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Обновить заметку",
		Description: "Частичное обновление. version должен совпадать с текущей версией заметки.",
		Tags:        []string{"notes"},
		Security:    bearer,
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "notes-delete",
		Method:        http.MethodDelete,
		Path:          "/api/v1/notes/{id}",
		Summary:       "Удалить заметку",
		Tags:          []string{"notes"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearer,
		Errors:        []int{http.StatusNotFound},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) favoriteOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-toggle-favorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/{id}/favorite",
		Summary:     "Переключить избранное",
		Tags:        []string{"notes"},
		Security:    bearer,
		Errors:      []int{http.StatusNotFound},
		Middlewares: h.middleware,
	}
}

func (h *Handler) uploadOp() huma.Operation {
	return huma.Operation{
		OperationID: "uploads-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/uploads",
		Summary:     "Получить ссылку для загрузки файла",
		Description: "Возвращает presigned PUT URL и ключ объекта для source_url новой заметки.",
		Tags:        []string{"uploads"},
		Security:    bearer,
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}

func (h *Handler) sourceOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-source",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}/source",
		Summary:     "Ссылка на исходный файл заметки",
		Tags:        []string{"notes", "uploads"},
		Security:    bearer,
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}
