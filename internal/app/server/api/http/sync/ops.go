package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getChangesOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-changes",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/changes",
		Summary:     "Получить изменения для синхронизации",
		Description: "Возвращает записи, измененные после last_sync_time, включая удаленные. Сначала папки, затем заметки.",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) batchSyncOp() huma.Operation {
	return huma.Operation{
		OperationID:  "sync-batch",
		Method:       http.MethodPost,
		Path:         "/api/v1/sync/batch",
		Summary:      "Пакетная синхронизация записей",
		Description:  "Принимает пакет записей для синхронизации с сервером",
		Tags:         []string{"sync"},
		MaxBodyBytes: 256 << 20,
		Security:     []map[string][]string{{"bearer": {}}},
		Errors:       []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge},
		Middlewares:  h.middleware,
	}
}

func (h *Handler) getStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/status",
		Summary:     "Получить статус синхронизации",
		Description: "Возвращает текущий статус синхронизации пользователя",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getConflictsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-conflicts",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/conflicts",
		Summary:     "Получить неразрешенные конфликты",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) resolveConflictOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-resolve-conflict",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/conflicts/{id}/resolve",
		Summary:     "Разрешить конфликт",
		Description: "client и merged записывают выбранную запись с версией на единицу больше серверной",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getDevicesOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-devices",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/devices",
		Summary:     "Список устройств",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) registerDeviceOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-register-device",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/devices",
		Summary:     "Зарегистрировать устройство",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) removeDeviceOp() huma.Operation {
	return huma.Operation{
		OperationID:   "sync-remove-device",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sync/devices/{id}",
		Summary:       "Удалить устройство",
		Tags:          []string{"sync"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
		Errors:        []int{http.StatusNotFound},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) getStatsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/stats",
		Summary:     "Статистика синхронизации",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
