package note

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// SourceType откуда пришло содержимое заметки
type SourceType string

const (
	SourceAudio  SourceType = "audio"
	SourceText   SourceType = "text"
	SourceVideo  SourceType = "video"
	SourceUpload SourceType = "upload"
)

func (SourceType) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(SourceAudio),
			string(SourceText),
			string(SourceVideo),
			string(SourceUpload),
		},
		Description: "Источник содержимого заметки",
		Examples:    []any{SourceText},
	}
}

func (t SourceType) Validate() error {
	switch t {
	case SourceAudio, SourceText, SourceVideo, SourceUpload:
		return nil
	}
	return fmt.Errorf("%w: unknown source type %q", ErrInvalidInput, t)
}

func (t SourceType) String() string {
	return string(t)
}

// DisplayName возвращает человекочитаемое название источника.
func (t SourceType) DisplayName() string {
	switch t {
	case SourceAudio:
		return "Аудио"
	case SourceText:
		return "Текст"
	case SourceVideo:
		return "Видео"
	case SourceUpload:
		return "Документ"
	default:
		return "Неизвестный источник"
	}
}

// Status стадия обработки заметки AI-генерацией
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

func (Status) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(StatusPending),
			string(StatusProcessing),
			string(StatusReady),
			string(StatusFailed),
		},
		Description: "Статус обработки заметки",
	}
}

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}
