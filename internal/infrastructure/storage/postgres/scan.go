package postgres

import (
	"time"

	"github.com/jackc/pgx/v5"

	"studynotes/internal/domain/note"
)

const noteColumns = `id, user_id, folder_id, title, source_type, source_url, content, ai_content,
	sections, mind_map, supplementary, status, favorite, tags, version, created_at, updated_at, deleted_at`

const folderColumns = `id, user_id, name, color, sort_order, version, created_at, updated_at, deleted_at`

func scanNote(row pgx.Row) (*note.Note, error) {
	var (
		n                  note.Note
		content, aiContent []byte
		sourceType, status string
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.FolderID, &n.Title, &sourceType, &n.SourceURL,
		&content, &aiContent, &n.Sections, &n.MindMap, &n.Supplementary,
		&status, &n.Favorite, &n.Tags, &n.Version, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	n.SourceType = note.SourceType(sourceType)
	n.Status = note.Status(status)
	n.Content = string(content)
	n.AIContent = string(aiContent)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

func scanFolder(row pgx.Row) (*note.Folder, error) {
	var f note.Folder
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Color, &f.SortOrder, &f.Version,
		&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// noteArgs значения колонок noteColumns в том же порядке плюс synced_at
func noteArgs(n *note.Note, syncedAt time.Time) []any {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		n.ID, n.UserID, n.FolderID, n.Title, string(n.SourceType), n.SourceURL,
		[]byte(n.Content), []byte(n.AIContent), n.Sections, n.MindMap, n.Supplementary,
		string(n.Status), n.Favorite, tags, n.Version, n.CreatedAt, n.UpdatedAt, n.DeletedAt,
		syncedAt,
	}
}

func folderArgs(f *note.Folder, syncedAt time.Time) []any {
	return []any{
		f.ID, f.UserID, f.Name, f.Color, f.SortOrder, f.Version,
		f.CreatedAt, f.UpdatedAt, f.DeletedAt, syncedAt,
	}
}
