package note

import (
	"context"
	"time"
)

// Repository хранилище заметок и папок.
// Get* возвращают и помеченные удаленными строки, фильтрация остается сервису.
// Update* обновляют строку только если в БД лежит expectedVersion,
// иначе возвращают ErrVersionConflict.
type Repository interface {
	ListNotes(ctx context.Context, userID int, filter Filter) ([]Note, error)
	GetNote(ctx context.Context, userID int, id string) (*Note, error)
	CreateNote(ctx context.Context, n *Note) error
	UpdateNote(ctx context.Context, n *Note, expectedVersion int) error

	ListFolders(ctx context.Context, userID int) ([]Folder, error)
	GetFolder(ctx context.Context, userID int, id string) (*Folder, error)
	CreateFolder(ctx context.Context, f *Folder) error
	UpdateFolder(ctx context.Context, f *Folder, expectedVersion int) error
	// DeleteFolder помечает папку удаленной и отвязывает от нее заметки
	DeleteFolder(ctx context.Context, f *Folder, expectedVersion int, at time.Time) error
}
