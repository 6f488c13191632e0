// Package apierror переводит ошибки доменов в ответы API вида
// {"status":"Error","error":"..."} с подходящим HTTP-статусом.
package apierror

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/generate"
	"studynotes/internal/domain/note"
	"studynotes/internal/domain/session"
	"studynotes/internal/domain/sync"
	"studynotes/internal/domain/transcript"
	"studynotes/internal/domain/user"
)

const StatusError = "Error"

// Envelope тело ошибки любого эндпоинта
type Envelope struct {
	Status  string   `json:"status" example:"Error"`
	Message string   `json:"error" example:"note not found"`
	Details []string `json:"details,omitempty"`
	code    int
}

func (e *Envelope) Error() string {
	return e.Message
}

func (e *Envelope) GetStatus() int {
	return e.code
}

// New совместим с huma.NewError, поэтому ошибки валидации huma
// приходят клиенту в том же формате.
func New(status int, msg string, errs ...error) huma.StatusError {
	env := &Envelope{Status: StatusError, Message: msg, code: status}
	for _, err := range errs {
		if err != nil {
			env.Details = append(env.Details, err.Error())
		}
	}
	return env
}

var statuses = []struct {
	target error
	status int
}{
	{note.ErrInvalidInput, http.StatusBadRequest},
	{user.ErrInvalidInput, http.StatusBadRequest},
	{sync.ErrInvalidPayload, http.StatusBadRequest},
	{sync.ErrInvalidResolution, http.StatusBadRequest},
	{generate.ErrUnknownKind, http.StatusBadRequest},
	{generate.ErrEmptyContent, http.StatusBadRequest},
	{transcript.ErrInvalidURL, http.StatusBadRequest},

	{user.ErrInvalidAuth, http.StatusUnauthorized},
	{session.ErrInvalidSession, http.StatusUnauthorized},

	{note.ErrNotFound, http.StatusNotFound},
	{note.ErrFolderNotFound, http.StatusNotFound},
	{note.ErrDeleted, http.StatusNotFound},
	{user.ErrNotFound, http.StatusNotFound},
	{sync.ErrConflictNotFound, http.StatusNotFound},
	{sync.ErrDeviceNotFound, http.StatusNotFound},
	{transcript.ErrNoCaptions, http.StatusNotFound},

	{note.ErrVersionConflict, http.StatusConflict},
	{user.ErrExists, http.StatusConflict},
	{sync.ErrConflictResolved, http.StatusConflict},

	{sync.ErrStorageLimit, http.StatusRequestEntityTooLarge},

	{generate.ErrCompletion, http.StatusBadGateway},
	{generate.ErrParse, http.StatusBadGateway},
	{transcript.ErrNetwork, http.StatusBadGateway},
	{transcript.ErrParse, http.StatusBadGateway},

	{note.ErrStorageDisabled, http.StatusServiceUnavailable},
}

// Status возвращает HTTP-статус для ошибки домена, 500 для остальных
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.target) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// From оборачивает ошибку сервиса в ответ API. Неизвестные ошибки
// логируются, а клиент получает обезличенное сообщение.
func From(log *slog.Logger, err error) error {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", slog.String("error", err.Error()))
		return New(status, "internal server error")
	}
	return New(status, err.Error())
}
