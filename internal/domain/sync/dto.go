package sync

import (
	"time"
)

// DTO (Data Transfer Objects) для API синхронизации

// Shape форма записей в ответе на запрос изменений
type Shape string

const (
	ShapeSimpleRecords   Shape = "simple"
	ShapeEnhancedRecords Shape = "enhanced"
)

// GetChangesRequest запрос на получение изменений.
// Until фиксирует верхнюю границу выборки между страницами одного прохода.
type GetChangesRequest struct {
	LastSyncTime time.Time
	Until        time.Time
	Limit        int
	Offset       int
	Shape        Shape
	DeviceID     string
}

// GetChangesResponse ответ с изменениями
type GetChangesResponse struct {
	Records      []EnhancedRecord `json:"records"`
	HasMore      bool             `json:"has_more"`
	ServerTime   time.Time        `json:"server_time"`
	TotalFolders int              `json:"total_folders"`
	TotalNotes   int              `json:"total_notes"`
}

// BatchSyncRequest запрос на пакетную синхронизацию
type BatchSyncRequest struct {
	Records  []EnhancedRecord `json:"records" maxItems:"1000"`
	DeviceID string           `json:"-"`
}

// RecordError ошибка обработки отдельной записи
type RecordError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ConflictBrief краткие сведения о созданном конфликте
type ConflictBrief struct {
	ID       int          `json:"id"`
	RecordID string       `json:"record_id"`
	Kind     Kind         `json:"kind"`
	Type     ConflictType `json:"conflict_type"`
}

// BatchSyncResponse ответ на пакетную синхронизацию.
// Versions содержит серверную версию каждой принятой записи.
type BatchSyncResponse struct {
	Processed  int             `json:"processed"`
	Failed     int             `json:"failed"`
	Errors     []RecordError   `json:"errors,omitempty"`
	Conflicts  []ConflictBrief `json:"conflicts,omitempty"`
	Versions   map[string]int  `json:"versions,omitempty"`
	ServerTime time.Time       `json:"server_time"`
}

// ResolveConflictRequest запрос на разрешение конфликта
type ResolveConflictRequest struct {
	Resolution Resolution      `json:"resolution" enum:"client,server,merged"`
	Record     *EnhancedRecord `json:"record,omitempty" required:"false" doc:"Итоговая запись для merged"`
}
