package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/note"
	"studynotes/internal/domain/sync"
)

// SyncRepository реализация репозитория синхронизации для PostgreSQL
type SyncRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
	now  func() time.Time
}

// NewSyncRepository создает новый репозиторий синхронизации
func NewSyncRepository(pool *pgxpool.Pool, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		pool: pool,
		log:  log.With("component", "sync_repository"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

const payloadSize = `COALESCE(octet_length(content), 0) + COALESCE(octet_length(ai_content), 0) +
	COALESCE(octet_length(sections), 0) + COALESCE(octet_length(mind_map), 0) +
	COALESCE(octet_length(supplementary), 0)`

// GetSyncStatus возвращает статус синхронизации пользователя
func (r *SyncRepository) GetSyncStatus(ctx context.Context, userID int) (*sync.SyncStatus, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM notes WHERE user_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM folders WHERE user_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM sync_devices WHERE user_id = $1),
			(SELECT COUNT(*) FROM sync_conflicts WHERE user_id = $1 AND NOT resolved),
			(SELECT COALESCE(SUM(` + payloadSize + `), 0)::BIGINT FROM notes WHERE user_id = $1 AND deleted_at IS NULL),
			(SELECT last_sync FROM sync_stats WHERE user_id = $1)
	`

	status := sync.SyncStatus{UserID: userID}
	var lastSync *time.Time
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&status.TotalNotes,
		&status.TotalFolders,
		&status.DeviceCount,
		&status.PendingConflicts,
		&status.StorageUsed,
		&lastSync,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	if lastSync != nil {
		status.LastSyncTime = *lastSync
	}
	return &status, nil
}

// StorageUsed суммарный объем больших полей живых заметок
func (r *SyncRepository) StorageUsed(ctx context.Context, userID int) (int64, error) {
	var used int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(`+payloadSize+`), 0)::BIGINT FROM notes
		 WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("failed to get storage usage: %w", err)
	}
	return used, nil
}

// NotesSize объем больших полей живых заметок с указанными идентификаторами
func (r *SyncRepository) NotesSize(ctx context.Context, userID int, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var size int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(`+payloadSize+`), 0)::BIGINT FROM notes
		 WHERE user_id = $1 AND id = ANY($2::uuid[]) AND deleted_at IS NULL`, userID, ids).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("failed to get notes size: %w", err)
	}
	return size, nil
}

// ListChanges отдает страницу ленты изменений. Лента состоит из папок, за
// которыми идут заметки, поэтому страница может захватить обе таблицы.
func (r *SyncRepository) ListChanges(ctx context.Context, userID int, since, until time.Time, limit, offset int) ([]sync.Change, error) {
	folderCount, _, err := r.CountChanges(ctx, userID, since, until)
	if err != nil {
		return nil, err
	}

	changes := make([]sync.Change, 0, limit)
	if offset < folderCount {
		rows, err := r.pool.Query(ctx,
			`SELECT `+folderColumns+` FROM folders
			 WHERE user_id = $1 AND synced_at > $2 AND synced_at <= $3
			 ORDER BY synced_at, id LIMIT $4 OFFSET $5`,
			userID, since, until, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("query folder changes: %w", err)
		}
		for rows.Next() {
			f, err := scanFolder(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan folder: %w", err)
			}
			changes = append(changes, sync.Change{Folder: f})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate folder changes: %w", err)
		}
	}

	remaining := limit - len(changes)
	if remaining <= 0 {
		return changes, nil
	}
	noteOffset := offset - folderCount
	if noteOffset < 0 {
		noteOffset = 0
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE user_id = $1 AND synced_at > $2 AND synced_at <= $3
		 ORDER BY synced_at, id LIMIT $4 OFFSET $5`,
		userID, since, until, remaining, noteOffset)
	if err != nil {
		return nil, fmt.Errorf("query note changes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		changes = append(changes, sync.Change{Note: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note changes: %w", err)
	}
	return changes, nil
}

func (r *SyncRepository) CountChanges(ctx context.Context, userID int, since, until time.Time) (folders, notes int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM folders WHERE user_id = $1 AND synced_at > $2 AND synced_at <= $3),
			(SELECT COUNT(*) FROM notes WHERE user_id = $1 AND synced_at > $2 AND synced_at <= $3)`,
		userID, since, until).Scan(&folders, &notes)
	if err != nil {
		return 0, 0, fmt.Errorf("count changes: %w", err)
	}
	return folders, notes, nil
}

func (r *SyncRepository) GetNote(ctx context.Context, userID int, id string) (*note.Note, error) {
	return getNote(ctx, r.pool, userID, id)
}

func (r *SyncRepository) GetFolder(ctx context.Context, userID int, id string) (*note.Folder, error) {
	return getFolder(ctx, r.pool, userID, id)
}

// UpsertNote вставляет или полностью заменяет заметку. Чужую запись с тем же
// идентификатором не трогает.
func (r *SyncRepository) UpsertNote(ctx context.Context, n *note.Note) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notes (`+noteColumns+`, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			folder_id = EXCLUDED.folder_id,
			title = EXCLUDED.title,
			source_type = EXCLUDED.source_type,
			source_url = EXCLUDED.source_url,
			content = EXCLUDED.content,
			ai_content = EXCLUDED.ai_content,
			sections = EXCLUDED.sections,
			mind_map = EXCLUDED.mind_map,
			supplementary = EXCLUDED.supplementary,
			status = EXCLUDED.status,
			favorite = EXCLUDED.favorite,
			tags = EXCLUDED.tags,
			version = EXCLUDED.version,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at,
			synced_at = EXCLUDED.synced_at
		WHERE notes.user_id = EXCLUDED.user_id`,
		noteArgs(n, r.now())...)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: note %s belongs to another user", sync.ErrInvalidPayload, n.ID)
	}
	return nil
}

func (r *SyncRepository) UpsertFolder(ctx context.Context, f *note.Folder) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO folders (`+folderColumns+`, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			sort_order = EXCLUDED.sort_order,
			version = EXCLUDED.version,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at,
			synced_at = EXCLUDED.synced_at
		WHERE folders.user_id = EXCLUDED.user_id`,
		folderArgs(f, r.now())...)
	if err != nil {
		return fmt.Errorf("failed to upsert folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: folder %s belongs to another user", sync.ErrInvalidPayload, f.ID)
	}
	return nil
}

// SaveConflict сохраняет конфликт и проставляет ему идентификатор
func (r *SyncRepository) SaveConflict(ctx context.Context, c *sync.Conflict) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sync_conflicts
			(user_id, record_id, kind, device_id, local_data, server_data, conflict_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.UserID, c.RecordID, string(c.Kind), c.DeviceID, c.LocalData, c.ServerData,
		string(c.Type), c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to save conflict: %w", err)
	}
	return nil
}

const conflictColumns = `id, record_id, kind, user_id, device_id, local_data, server_data,
	conflict_type, resolved, resolution, resolved_at, created_at`

func scanConflict(row interface{ Scan(...any) error }) (*sync.Conflict, error) {
	var (
		c                       sync.Conflict
		kind, ctype, resolution string
	)
	err := row.Scan(&c.ID, &c.RecordID, &kind, &c.UserID, &c.DeviceID, &c.LocalData, &c.ServerData,
		&ctype, &c.Resolved, &resolution, &c.ResolvedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Kind = sync.Kind(kind)
	c.Type = sync.ConflictType(ctype)
	c.Resolution = sync.Resolution(resolution)
	return &c, nil
}

// ListConflicts возвращает неразрешенные конфликты
func (r *SyncRepository) ListConflicts(ctx context.Context, userID int) ([]sync.Conflict, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+conflictColumns+` FROM sync_conflicts
		 WHERE user_id = $1 AND NOT resolved
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conflicts: %w", err)
	}
	defer rows.Close()

	conflicts := make([]sync.Conflict, 0)
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		conflicts = append(conflicts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflicts: %w", err)
	}
	return conflicts, nil
}

func (r *SyncRepository) GetConflict(ctx context.Context, userID, conflictID int) (*sync.Conflict, error) {
	c, err := scanConflict(r.pool.QueryRow(ctx,
		`SELECT `+conflictColumns+` FROM sync_conflicts WHERE id = $1 AND user_id = $2`,
		conflictID, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, sync.ErrConflictNotFound
		}
		return nil, fmt.Errorf("failed to get conflict: %w", err)
	}
	return c, nil
}

// MarkResolved помечает конфликт разрешенным ровно один раз
func (r *SyncRepository) MarkResolved(ctx context.Context, conflictID int, resolution sync.Resolution, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sync_conflicts SET resolved = TRUE, resolution = $2, resolved_at = $3
		WHERE id = $1 AND NOT resolved`,
		conflictID, string(resolution), at)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sync.ErrConflictResolved
	}
	return nil
}

// TouchDevice регистрирует устройство или обновляет время его активности.
// Пустой user agent не затирает сохраненный.
func (r *SyncRepository) TouchDevice(ctx context.Context, d *sync.Device) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_devices (id, user_id, name, user_agent, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, id) DO UPDATE SET
			last_seen = EXCLUDED.last_seen,
			user_agent = COALESCE(NULLIF(EXCLUDED.user_agent, ''), sync_devices.user_agent)`,
		d.ID, d.UserID, d.Name, d.UserAgent, d.LastSeen, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	return nil
}

func (r *SyncRepository) ListDevices(ctx context.Context, userID int) ([]sync.Device, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, user_agent, last_seen, created_at
		FROM sync_devices WHERE user_id = $1
		ORDER BY last_seen DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}
	defer rows.Close()

	devices := make([]sync.Device, 0)
	for rows.Next() {
		var d sync.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.UserAgent, &d.LastSeen, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}
	return devices, nil
}

func (r *SyncRepository) DeleteDevice(ctx context.Context, userID int, deviceID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sync_devices WHERE user_id = $1 AND id = $2`, userID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sync.ErrDeviceNotFound
	}
	return nil
}

func (r *SyncRepository) GetStats(ctx context.Context, userID int) (*sync.SyncStats, error) {
	var (
		stats    sync.SyncStats
		lastSync *time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT total_syncs, total_uploads, total_downloads, total_conflicts, total_resolved,
		       avg_sync_duration_ms, last_sync
		FROM sync_stats WHERE user_id = $1`, userID).Scan(
		&stats.TotalSyncs, &stats.TotalUploads, &stats.TotalDownloads,
		&stats.TotalConflicts, &stats.TotalResolved, &stats.AvgSyncDuration, &lastSync,
	)
	if err != nil {
		if isNoRows(err) {
			return &stats, nil
		}
		return nil, fmt.Errorf("failed to get sync stats: %w", err)
	}
	if lastSync != nil {
		stats.LastSync = *lastSync
	}
	return &stats, nil
}

// AddStats накапливает статистику. Операции с длительностью считаются
// синхронизациями и входят в скользящее среднее.
func (r *SyncRepository) AddStats(ctx context.Context, userID int, delta sync.StatsDelta) error {
	var (
		syncs    int64
		duration float64
		lastSync *time.Time
	)
	if delta.Duration > 0 {
		syncs = 1
		duration = float64(delta.Duration) / float64(time.Millisecond)
		now := r.now()
		lastSync = &now
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_stats AS s
			(user_id, total_syncs, total_uploads, total_downloads, total_conflicts, total_resolved,
			 avg_sync_duration_ms, last_sync)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			total_syncs = s.total_syncs + EXCLUDED.total_syncs,
			total_uploads = s.total_uploads + EXCLUDED.total_uploads,
			total_downloads = s.total_downloads + EXCLUDED.total_downloads,
			total_conflicts = s.total_conflicts + EXCLUDED.total_conflicts,
			total_resolved = s.total_resolved + EXCLUDED.total_resolved,
			avg_sync_duration_ms = CASE
				WHEN EXCLUDED.total_syncs = 0 THEN s.avg_sync_duration_ms
				ELSE (s.avg_sync_duration_ms * s.total_syncs + EXCLUDED.avg_sync_duration_ms)
				     / (s.total_syncs + 1)
			END,
			last_sync = COALESCE(EXCLUDED.last_sync, s.last_sync)`,
		userID, syncs, delta.Uploads, delta.Downloads, delta.Conflicts, delta.Resolved, duration, lastSync)
	if err != nil {
		return fmt.Errorf("failed to update sync stats: %w", err)
	}
	return nil
}
