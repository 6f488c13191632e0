package sync

import (
	"time"
)

// Kind тип синхронизируемой записи
type Kind string

const (
	KindNote   Kind = "note"
	KindFolder Kind = "folder"
)

// ConflictType описывает, какие стороны изменили запись
type ConflictType string

const (
	ConflictEditEdit   ConflictType = "edit-edit"
	ConflictDeleteEdit ConflictType = "delete-edit" // клиент удалил, сервер изменил
	ConflictEditDelete ConflictType = "edit-delete" // клиент изменил, сервер удалил
)

// Resolution способ разрешения конфликта
type Resolution string

const (
	ResolveClient Resolution = "client"
	ResolveServer Resolution = "server"
	ResolveMerged Resolution = "merged"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolveClient, ResolveServer, ResolveMerged:
		return true
	}
	return false
}

// SyncStatus представляет статус синхронизации пользователя
type SyncStatus struct {
	UserID           int       `json:"-"`
	LastSyncTime     time.Time `json:"last_sync_time"`
	TotalNotes       int       `json:"total_notes"`
	TotalFolders     int       `json:"total_folders"`
	DeviceCount      int       `json:"device_count"`
	PendingConflicts int       `json:"pending_conflicts"`
	StorageUsed      int64     `json:"storage_used"`
	StorageLimit     int64     `json:"storage_limit"`
}

// Device устройство, участвующее в синхронизации
type Device struct {
	ID        string    `json:"id"`
	UserID    int       `json:"-"`
	Name      string    `json:"name"`
	UserAgent string    `json:"user_agent,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
}

// Conflict конфликт синхронизации. LocalData и ServerData содержат
// EnhancedRecord в JSON.
type Conflict struct {
	ID         int          `json:"id"`
	RecordID   string       `json:"record_id"`
	Kind       Kind         `json:"kind"`
	UserID     int          `json:"-"`
	DeviceID   string       `json:"device_id,omitempty"`
	LocalData  []byte       `json:"local_data"`
	ServerData []byte       `json:"server_data"`
	Type       ConflictType `json:"conflict_type"`
	Resolved   bool         `json:"resolved"`
	Resolution Resolution   `json:"resolution,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// SyncStats статистика синхронизации
type SyncStats struct {
	TotalSyncs      int64     `json:"total_syncs"`
	TotalUploads    int64     `json:"total_uploads"`
	TotalDownloads  int64     `json:"total_downloads"`
	TotalConflicts  int64     `json:"total_conflicts"`
	TotalResolved   int64     `json:"total_resolved"`
	AvgSyncDuration float64   `json:"avg_sync_duration_ms"`
	LastSync        time.Time `json:"last_sync,omitempty"`
}

// StatsDelta приращение статистики за одну операцию
type StatsDelta struct {
	Uploads   int64
	Downloads int64
	Conflicts int64
	Resolved  int64
	Duration  time.Duration
}

// ServiceConfig конфигурация сервиса синхронизации
type ServiceConfig struct {
	BatchSize      int
	MaxSyncRecords int
	StorageLimit   int64
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		BatchSize:      100,
		MaxSyncRecords: 1000,
		StorageLimit:   100 * 1024 * 1024, // 100 MB
	}
}
