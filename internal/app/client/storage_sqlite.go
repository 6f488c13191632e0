package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"studynotes/internal/domain/note"
)

const (
	metaLastSync = "last_sync_time"
	metaDeviceID = "device_id"

	// фиксированная ширина, чтобы строки сортировались как время
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT,
			sync_state TEXT NOT NULL DEFAULT 'pending',
			base_version INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			folder_id TEXT,
			title TEXT NOT NULL,
			source_type TEXT NOT NULL,
			source_url TEXT NOT NULL DEFAULT '',
			content BLOB,
			ai_content BLOB,
			sections BLOB,
			mind_map BLOB,
			supplementary BLOB,
			status TEXT NOT NULL,
			favorite BOOLEAN NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT,
			sync_state TEXT NOT NULL DEFAULT 'pending',
			base_version INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_notes_state ON notes(sync_state);
		CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at);
		CREATE INDEX IF NOT EXISTS idx_folders_state ON folders(sync_state);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	for _, table := range []string{"notes", "folders"} {
		if err := s.addBaseVersion(table); err != nil {
			return err
		}
	}
	return nil
}

// addBaseVersion добавляет base_version в кэш, созданный до появления колонки.
// Синхронизированные строки получают базу, равную своей версии.
func (s *SQLiteStorage) addBaseVersion(table string) error {
	_, err := s.db.Exec("ALTER TABLE " + table + " ADD COLUMN base_version INTEGER NOT NULL DEFAULT 0")
	if err != nil {
		if strings.Contains(err.Error(), "duplicate column name") {
			return nil
		}
		return fmt.Errorf("add base_version to %s: %w", table, err)
	}
	_, err = s.db.Exec("UPDATE "+table+" SET base_version = version WHERE sync_state = ?", string(StateSynced))
	return err
}

const noteColumns = `id, folder_id, title, source_type, source_url, content, ai_content,
	sections, mind_map, supplementary, status, favorite, tags, version,
	created_at, updated_at, deleted_at, sync_state, base_version`

const folderColumns = `id, name, color, sort_order, version, created_at, updated_at, deleted_at, sync_state, base_version`

type scanner interface {
	Scan(dest ...any) error
}

// SaveNote вставляет или заменяет заметку целиком.
// Для синхронизированной записи база совпадает с версией.
func (s *SQLiteStorage) SaveNote(ctx context.Context, n *LocalNote) error {
	if n.State == StateSynced {
		n.BaseVersion = n.Version
	}
	tags, err := json.Marshal(nonNilTags(n.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folder_id = excluded.folder_id,
			title = excluded.title,
			source_type = excluded.source_type,
			source_url = excluded.source_url,
			content = excluded.content,
			ai_content = excluded.ai_content,
			sections = excluded.sections,
			mind_map = excluded.mind_map,
			supplementary = excluded.supplementary,
			status = excluded.status,
			favorite = excluded.favorite,
			tags = excluded.tags,
			version = excluded.version,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at,
			sync_state = excluded.sync_state,
			base_version = excluded.base_version
	`, n.ID, n.FolderID, n.Title, string(n.SourceType), n.SourceURL,
		[]byte(n.Content), []byte(n.AIContent), n.Sections, n.MindMap, n.Supplementary,
		string(n.Status), n.Favorite, string(tags), n.Version,
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt), formatTimePtr(n.DeletedAt), string(n.State), n.BaseVersion)
	if err != nil {
		return fmt.Errorf("save note %s: %w", n.ID, err)
	}
	return nil
}

// GetNote возвращает заметку, включая удаленные
func (s *SQLiteStorage) GetNote(ctx context.Context, id string) (*LocalNote, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: note %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *SQLiteStorage) ListNotes(ctx context.Context, filter NoteFilter) ([]*LocalNote, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE 1=1"
	var args []any

	if !filter.ShowDeleted {
		query += " AND deleted_at IS NULL"
	}
	if filter.FolderID != nil {
		if *filter.FolderID == "" {
			query += " AND folder_id IS NULL"
		} else {
			query += " AND folder_id = ?"
			args = append(args, *filter.FolderID)
		}
	}
	if filter.Favorite {
		query += " AND favorite = 1"
	}
	if filter.Tag != "" {
		query += " AND EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)"
		args = append(args, filter.Tag)
	}
	if filter.Query != "" {
		query += " AND title LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(filter.Query)+"%")
	}
	if filter.State != "" {
		query += " AND sync_state = ?"
		args = append(args, string(filter.State))
	}

	query += " ORDER BY updated_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*LocalNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ResolveNoteID находит заметку по префиксу идентификатора
func (s *SQLiteStorage) ResolveNoteID(ctx context.Context, prefix string) (string, error) {
	return s.resolveID(ctx, "notes", prefix)
}

func (s *SQLiteStorage) ResolveFolderID(ctx context.Context, prefix string) (string, error) {
	return s.resolveID(ctx, "folders", prefix)
}

func (s *SQLiteStorage) resolveID(ctx context.Context, table, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM "+table+" WHERE id LIKE ? ESCAPE '\\' LIMIT 2", escapeLike(prefix)+"%")
	if err != nil {
		return "", fmt.Errorf("resolve id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
}

// MarkNoteSynced фиксирует, что сервер хранит версию sent под номером
// serverVersion. Если запись с тех пор правили локально, она остается
// в ожидании, но ее база и версия поднимаются над серверной.
func (s *SQLiteStorage) MarkNoteSynced(ctx context.Context, id string, sent, serverVersion int) error {
	if err := s.settle(ctx, "notes", id, sent, serverVersion); err != nil {
		return fmt.Errorf("mark note synced: %w", err)
	}
	return nil
}

// settle одним UPDATE: выражения SET читают значения строки до изменения
func (s *SQLiteStorage) settle(ctx context.Context, table, id string, sent, serverVersion int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE `+table+` SET
			base_version = ?,
			sync_state = CASE WHEN version = ? THEN ? ELSE ? END,
			version = CASE WHEN version = ? THEN ? ELSE MAX(version, ?) END
		WHERE id = ?
	`, serverVersion,
		sent, string(StateSynced), string(StatePending),
		sent, serverVersion, serverVersion+1,
		id)
	return err
}

func (s *SQLiteStorage) SetNoteState(ctx context.Context, id string, state SyncState) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notes SET sync_state = ? WHERE id = ?", string(state), id)
	if err != nil {
		return fmt.Errorf("set note state: %w", err)
	}
	return expectOne(res, id)
}

func (s *SQLiteStorage) SaveFolder(ctx context.Context, f *LocalFolder) error {
	if f.State == StateSynced {
		f.BaseVersion = f.Version
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (`+folderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			sort_order = excluded.sort_order,
			version = excluded.version,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at,
			sync_state = excluded.sync_state,
			base_version = excluded.base_version
	`, f.ID, f.Name, f.Color, f.SortOrder, f.Version,
		formatTime(f.CreatedAt), formatTime(f.UpdatedAt), formatTimePtr(f.DeletedAt), string(f.State), f.BaseVersion)
	if err != nil {
		return fmt.Errorf("save folder %s: %w", f.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) GetFolder(ctx context.Context, id string) (*LocalFolder, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+folderColumns+" FROM folders WHERE id = ?", id)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: folder %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return f, nil
}

// ListFolders возвращает папки; пустой state означает любые.
func (s *SQLiteStorage) ListFolders(ctx context.Context, showDeleted bool, state SyncState) ([]*LocalFolder, error) {
	query := "SELECT " + folderColumns + " FROM folders WHERE 1=1"
	var args []any
	if !showDeleted {
		query += " AND deleted_at IS NULL"
	}
	if state != "" {
		query += " AND sync_state = ?"
		args = append(args, string(state))
	}
	query += " ORDER BY sort_order, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []*LocalFolder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (s *SQLiteStorage) MarkFolderSynced(ctx context.Context, id string, sent, serverVersion int) error {
	if err := s.settle(ctx, "folders", id, sent, serverVersion); err != nil {
		return fmt.Errorf("mark folder synced: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) SetFolderState(ctx context.Context, id string, state SyncState) error {
	res, err := s.db.ExecContext(ctx, "UPDATE folders SET sync_state = ? WHERE id = ?", string(state), id)
	if err != nil {
		return fmt.Errorf("set folder state: %w", err)
	}
	return expectOne(res, id)
}

// LastSyncTime курсор последней успешной синхронизации; нулевое время
// означает, что синхронизации еще не было.
func (s *SQLiteStorage) LastSyncTime(ctx context.Context) (time.Time, error) {
	v, err := s.getMeta(ctx, metaLastSync)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sync cursor: %w", err)
	}
	return t, nil
}

func (s *SQLiteStorage) SetLastSyncTime(ctx context.Context, t time.Time) error {
	return s.setMeta(ctx, metaLastSync, formatTime(t))
}

// DeviceID идентификатор этой установки клиента; создается при первом обращении.
func (s *SQLiteStorage) DeviceID(ctx context.Context) (string, error) {
	id, err := s.getMeta(ctx, metaDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.setMeta(ctx, metaDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStorage) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM notes WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM folders WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM notes WHERE sync_state = 'pending'),
			(SELECT COUNT(*) FROM folders WHERE sync_state = 'pending'),
			(SELECT COUNT(*) FROM notes WHERE sync_state = 'conflict')
				+ (SELECT COUNT(*) FROM folders WHERE sync_state = 'conflict')
	`).Scan(&c.Notes, &c.Folders, &c.PendingNotes, &c.PendingFolders, &c.Conflicts)
	if err != nil {
		return Counts{}, fmt.Errorf("count records: %w", err)
	}
	c.LastSync, err = s.LastSyncTime(ctx)
	return c, err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) getMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStorage) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func scanNote(row scanner) (*LocalNote, error) {
	var (
		n                    LocalNote
		folderID             sql.NullString
		sourceType, status   string
		content, aiContent   []byte
		tags, state          string
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)
	err := row.Scan(&n.ID, &folderID, &n.Title, &sourceType, &n.SourceURL,
		&content, &aiContent, &n.Sections, &n.MindMap, &n.Supplementary,
		&status, &n.Favorite, &tags, &n.Version,
		&createdAt, &updatedAt, &deletedAt, &state, &n.BaseVersion)
	if err != nil {
		return nil, err
	}

	if folderID.Valid {
		n.FolderID = &folderID.String
	}
	n.SourceType = note.SourceType(sourceType)
	n.Status = note.Status(status)
	n.Content = string(content)
	n.AIContent = string(aiContent)
	n.State = SyncState(state)
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if n.DeletedAt, err = parseTimePtr(deletedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func scanFolder(row scanner) (*LocalFolder, error) {
	var (
		f                    LocalFolder
		createdAt, updatedAt string
		deletedAt            sql.NullString
		state                string
	)
	err := row.Scan(&f.ID, &f.Name, &f.Color, &f.SortOrder, &f.Version,
		&createdAt, &updatedAt, &deletedAt, &state, &f.BaseVersion)
	if err != nil {
		return nil, err
	}

	f.State = SyncState(state)
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if f.DeletedAt, err = parseTimePtr(deletedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
