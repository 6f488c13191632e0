package client

import (
	"errors"
	"time"

	"studynotes/internal/domain/note"
)

// SyncState состояние локальной записи относительно сервера
type SyncState string

const (
	StatePending  SyncState = "pending"
	StateSynced   SyncState = "synced"
	StateConflict SyncState = "conflict"
)

var (
	ErrNotFound        = errors.New("record not found in local cache")
	ErrNotAuthorized   = errors.New("not logged in, run `studynotes auth login`")
	ErrSyncInProgress  = errors.New("another sync is running for this data directory")
	ErrUnknownStrategy = errors.New("unknown conflict strategy")
)

// LocalNote заметка в локальном кэше.
// BaseVersion серверная версия, от которой начата локальная правка.
type LocalNote struct {
	note.Note
	BaseVersion int       `json:"base_version"`
	State       SyncState `json:"sync_state"`
}

// LocalFolder папка в локальном кэше
type LocalFolder struct {
	note.Folder
	BaseVersion int       `json:"base_version"`
	State       SyncState `json:"sync_state"`
}

// NoteFilter критерии выборки из локального кэша
type NoteFilter struct {
	FolderID    *string
	Favorite    bool
	Tag         string
	Query       string
	ShowDeleted bool
	State       SyncState
	Limit       int
	Offset      int
}

// Counts сводка по локальному кэшу
type Counts struct {
	Notes          int
	Folders        int
	PendingNotes   int
	PendingFolders int
	Conflicts      int
	LastSync       time.Time
}
