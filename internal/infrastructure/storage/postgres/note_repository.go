package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/note"
)

// NoteRepository хранит заметки и папки. Каждая запись проставляет synced_at,
// по которому строится лента изменений синхронизации.
type NoteRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
	now  func() time.Time
}

func NewNoteRepository(pool *pgxpool.Pool, log *slog.Logger) *NoteRepository {
	return &NoteRepository{
		pool: pool,
		log:  log.With("component", "note_repository"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *NoteRepository) ListNotes(ctx context.Context, userID int, filter note.Filter) ([]note.Note, error) {
	var sb strings.Builder
	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 AND deleted_at IS NULL`)
	if filter.FolderID != nil {
		if *filter.FolderID == "" {
			sb.WriteString(` AND folder_id IS NULL`)
		} else {
			sb.WriteString(` AND folder_id = ` + arg(*filter.FolderID))
		}
	}
	if filter.Favorite != nil {
		sb.WriteString(` AND favorite = ` + arg(*filter.Favorite))
	}
	if filter.Tag != "" {
		sb.WriteString(` AND ` + arg(filter.Tag) + ` = ANY(tags)`)
	}
	if filter.SourceType != "" {
		sb.WriteString(` AND source_type = ` + arg(string(filter.SourceType)))
	}
	if filter.Query != "" {
		sb.WriteString(` AND title ILIKE ` + arg("%"+likeEscaper.Replace(filter.Query)+"%"))
	}
	sb.WriteString(` ORDER BY updated_at DESC, id LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]note.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) GetNote(ctx context.Context, userID int, id string) (*note.Note, error) {
	return getNote(ctx, r.pool, userID, id)
}

func (r *NoteRepository) CreateNote(ctx context.Context, n *note.Note) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notes (`+noteColumns+`, synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		noteArgs(n, r.now())...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: note %s already exists", note.ErrVersionConflict, n.ID)
		}
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepository) UpdateNote(ctx context.Context, n *note.Note, expectedVersion int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notes SET
			folder_id = $3, title = $4, source_type = $5, source_url = $6, content = $7,
			ai_content = $8, sections = $9, mind_map = $10, supplementary = $11, status = $12,
			favorite = $13, tags = $14, version = $15, created_at = $16, updated_at = $17, deleted_at = $18,
			synced_at = $19
		 WHERE id = $1 AND user_id = $2 AND version = $20`,
		append(noteArgs(n, r.now()), expectedVersion)...)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, "notes", n.UserID, n.ID, note.ErrNotFound)
	}
	return nil
}

func (r *NoteRepository) ListFolders(ctx context.Context, userID int) ([]note.Folder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+folderColumns+` FROM folders
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY sort_order, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	folders := make([]note.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

func (r *NoteRepository) GetFolder(ctx context.Context, userID int, id string) (*note.Folder, error) {
	return getFolder(ctx, r.pool, userID, id)
}

func (r *NoteRepository) CreateFolder(ctx context.Context, f *note.Folder) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO folders (`+folderColumns+`, synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		folderArgs(f, r.now())...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: folder %s already exists", note.ErrVersionConflict, f.ID)
		}
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (r *NoteRepository) UpdateFolder(ctx context.Context, f *note.Folder, expectedVersion int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE folders SET
			name = $3, color = $4, sort_order = $5, version = $6, created_at = $7, updated_at = $8,
			deleted_at = $9, synced_at = $10
		 WHERE id = $1 AND user_id = $2 AND version = $11`,
		append(folderArgs(f, r.now()), expectedVersion)...)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, "folders", f.UserID, f.ID, note.ErrFolderNotFound)
	}
	return nil
}

// DeleteFolder в одной транзакции помечает папку удаленной и переносит ее
// заметки в корень, увеличивая их версию.
func (r *NoteRepository) DeleteFolder(ctx context.Context, f *note.Folder, expectedVersion int, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx, r.log)

	syncedAt := r.now()
	tag, err := tx.Exec(ctx,
		`UPDATE folders SET version = $3, updated_at = $4, deleted_at = $5, synced_at = $6
		 WHERE id = $1 AND user_id = $2 AND version = $7`,
		f.ID, f.UserID, f.Version, f.UpdatedAt, f.DeletedAt, syncedAt, expectedVersion)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, "folders", f.UserID, f.ID, note.ErrFolderNotFound)
	}

	detached, err := tx.Exec(ctx,
		`UPDATE notes SET folder_id = NULL, version = version + 1, updated_at = $3, synced_at = $4
		 WHERE folder_id = $1 AND user_id = $2`,
		f.ID, f.UserID, at, syncedAt)
	if err != nil {
		return fmt.Errorf("detach notes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug("folder deleted",
		slog.String("folder_id", f.ID),
		slog.Int64("detached_notes", detached.RowsAffected()))
	return nil
}

// missOrConflict различает отсутствующую строку и устаревшую версию
func (r *NoteRepository) missOrConflict(ctx context.Context, table string, userID int, id string, notFound error) error {
	var version int
	err := r.pool.QueryRow(ctx,
		`SELECT version FROM `+table+` WHERE id = $1 AND user_id = $2`, id, userID).Scan(&version)
	if err != nil {
		if isNoRows(err) {
			return notFound
		}
		return fmt.Errorf("check version: %w", err)
	}
	return fmt.Errorf("%w: current version %d", note.ErrVersionConflict, version)
}

// querier общий интерфейс пула и транзакции
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getNote(ctx context.Context, q querier, userID int, id string) (*note.Note, error) {
	n, err := scanNote(q.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, note.ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func getFolder(ctx context.Context, q querier, userID int, id string) (*note.Folder, error) {
	f, err := scanFolder(q.QueryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, note.ErrFolderNotFound
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return f, nil
}
