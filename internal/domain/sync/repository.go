package sync

import (
	"context"
	"time"

	"studynotes/internal/domain/note"
)

// Change одна измененная запись: ровно одно из полей заполнено
type Change struct {
	Folder *note.Folder
	Note   *note.Note
}

// Repository интерфейс для работы с синхронизацией
type Repository interface {
	// GetSyncStatus собирает агрегаты по записям, устройствам и конфликтам
	GetSyncStatus(ctx context.Context, userID int) (*SyncStatus, error)
	StorageUsed(ctx context.Context, userID int) (int64, error)
	// NotesSize объем больших полей живых заметок из списка
	NotesSize(ctx context.Context, userID int, ids []string) (int64, error)

	// ListChanges возвращает записи, измененные на сервере в (since, until],
	// включая удаленные: сначала папки, затем заметки, по возрастанию времени.
	ListChanges(ctx context.Context, userID int, since, until time.Time, limit, offset int) ([]Change, error)
	CountChanges(ctx context.Context, userID int, since, until time.Time) (folders, notes int, err error)

	// Get* возвращают note.ErrNotFound / note.ErrFolderNotFound
	GetNote(ctx context.Context, userID int, id string) (*note.Note, error)
	GetFolder(ctx context.Context, userID int, id string) (*note.Folder, error)
	UpsertNote(ctx context.Context, n *note.Note) error
	UpsertFolder(ctx context.Context, f *note.Folder) error

	SaveConflict(ctx context.Context, c *Conflict) error
	ListConflicts(ctx context.Context, userID int) ([]Conflict, error)
	GetConflict(ctx context.Context, userID, conflictID int) (*Conflict, error)
	MarkResolved(ctx context.Context, conflictID int, resolution Resolution, at time.Time) error

	TouchDevice(ctx context.Context, d *Device) error
	ListDevices(ctx context.Context, userID int) ([]Device, error)
	DeleteDevice(ctx context.Context, userID int, deviceID string) error

	GetStats(ctx context.Context, userID int) (*SyncStats, error)
	AddStats(ctx context.Context, userID int, delta StatsDelta) error
}
