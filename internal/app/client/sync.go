package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/sync"
)

// Strategy правило разрешения коллизий между локальной и серверной версией
type Strategy string

const (
	StrategyClient Strategy = "client"
	StrategyServer Strategy = "server"
	StrategyNewer  Strategy = "newer"
	StrategyManual Strategy = "manual"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategyClient, StrategyServer, StrategyNewer, StrategyManual:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// winner выбирает сторону. ok=false означает ручное разрешение.
// Для newer при равном времени побеждает сервер.
func (s Strategy) winner(localUpdated, serverUpdated time.Time) (res sync.Resolution, ok bool) {
	switch s {
	case StrategyClient:
		return sync.ResolveClient, true
	case StrategyServer:
		return sync.ResolveServer, true
	case StrategyNewer:
		if localUpdated.After(serverUpdated) {
			return sync.ResolveClient, true
		}
		return sync.ResolveServer, true
	}
	return "", false
}

// remote серверная часть синхронизации
type remote interface {
	GetChanges(ctx context.Context, deviceID string, req changesRequest) (*sync.GetChangesResponse, error)
	SendBatch(ctx context.Context, deviceID string, records []sync.EnhancedRecord) (*sync.BatchSyncResponse, error)
	Conflicts(ctx context.Context) ([]sync.Conflict, error)
	ResolveConflict(ctx context.Context, id int, req sync.ResolveConflictRequest) error
}

// SyncError ошибка синхронизации отдельной записи или этапа
type SyncError struct {
	RecordID  string `json:"record_id,omitempty"`
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// SyncResult результат одного прохода синхронизации
type SyncResult struct {
	Direction  sync.Direction `json:"direction"`
	Uploaded   int            `json:"uploaded"`
	Downloaded int            `json:"downloaded"`
	Conflicts  int            `json:"conflicts"`
	Resolved   int            `json:"resolved"`
	Errors     []SyncError    `json:"errors,omitempty"`
	Cursor     time.Time      `json:"cursor"`
	Duration   time.Duration  `json:"duration"`
}

func (r *SyncResult) Success() bool {
	return len(r.Errors) == 0
}

func (r *SyncResult) fail(recordID, op string, err error) {
	r.Errors = append(r.Errors, SyncError{RecordID: recordID, Operation: op, Message: err.Error()})
}

// SyncService управляет синхронизацией данных между клиентом и сервером
type SyncService struct {
	remote    remote
	store     *SQLiteStorage
	lock      *flock.Flock
	log       *slog.Logger
	strategy  Strategy
	batchSize int
	mu        gosync.Mutex
}

func NewSyncService(r remote, store *SQLiteStorage, lockPath string, strategy Strategy, batchSize int, log *slog.Logger) *SyncService {
	return &SyncService{
		remote:    r,
		store:     store,
		lock:      flock.New(lockPath),
		log:       log.With("component", "sync_service"),
		strategy:  strategy,
		batchSize: batchSize,
	}
}

// Sync выполняет один проход: сначала выгрузка папок и заметок, затем
// постраничная загрузка изменений с сервера. Курсор сдвигается только
// если ни один пакет не завершился ошибкой.
func (s *SyncService) Sync(ctx context.Context, direction sync.Direction, onProgress sync.ProgressFunc) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !locked {
		return nil, ErrSyncInProgress
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.log.Warn("failed to release sync lock", "error", err)
		}
	}()

	started := time.Now()
	result := &SyncResult{Direction: direction}
	progress := sync.Progress{Direction: direction}
	report := func() {
		if onProgress != nil {
			onProgress(progress)
		}
	}

	deviceID, err := s.store.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	s.log.Info("sync started", "direction", direction, "strategy", s.strategy)

	if direction.Uploads() {
		if err := s.upload(ctx, deviceID, result, &progress, report); err != nil {
			return nil, err
		}
	}

	if direction.Downloads() {
		if err := s.download(ctx, deviceID, result, &progress, report); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(started)
	if result.Success() {
		s.log.Info("sync finished",
			"duration", result.Duration,
			"uploaded", result.Uploaded,
			"downloaded", result.Downloaded,
			"conflicts", result.Conflicts,
		)
	} else {
		s.log.Warn("sync finished with errors",
			"duration", result.Duration,
			"errors", len(result.Errors),
		)
	}
	return result, nil
}

func (s *SyncService) upload(ctx context.Context, deviceID string, result *SyncResult, progress *sync.Progress, report func()) error {
	folders, err := s.store.ListFolders(ctx, true, StatePending)
	if err != nil {
		return err
	}
	notes, err := s.store.ListNotes(ctx, NoteFilter{ShowDeleted: true, State: StatePending})
	if err != nil {
		return err
	}
	progress.TotalFoldersToUpload = len(folders)
	progress.TotalNotesToUpload = len(notes)
	report()

	versions := make(map[string]int, len(folders)+len(notes))
	var conflicts []sync.ConflictBrief

	folderRecords := make([]sync.EnhancedRecord, 0, len(folders))
	for _, f := range folders {
		rec := sync.FolderRecord(f.Folder)
		rec.BaseVersion = f.BaseVersion
		folderRecords = append(folderRecords, rec)
		versions[f.ID] = f.Version
	}
	noteRecords := make([]sync.EnhancedRecord, 0, len(notes))
	for _, n := range notes {
		rec := sync.ShapeEnhanced(n.Note)
		rec.BaseVersion = n.BaseVersion
		noteRecords = append(noteRecords, rec)
		versions[n.ID] = n.Version
	}

	for _, batch := range chunk(folderRecords, s.batchSize) {
		c := s.sendBatch(ctx, deviceID, batch, versions, result)
		conflicts = append(conflicts, c...)
		progress.FoldersUploaded += len(batch)
		report()
	}
	for _, batch := range chunk(noteRecords, s.batchSize) {
		c := s.sendBatch(ctx, deviceID, batch, versions, result)
		conflicts = append(conflicts, c...)
		progress.NotesUploaded += len(batch)
		report()
	}

	if len(conflicts) > 0 {
		s.handleConflicts(ctx, conflicts, result)
	}
	return nil
}

// sendBatch отправляет пакет и отмечает принятые записи синхронизированными
func (s *SyncService) sendBatch(ctx context.Context, deviceID string, batch []sync.EnhancedRecord, versions map[string]int, result *SyncResult) []sync.ConflictBrief {
	resp, err := s.remote.SendBatch(ctx, deviceID, batch)
	if err != nil {
		for _, rec := range batch {
			result.fail(rec.ID, "upload", err)
		}
		return nil
	}

	rejected := make(map[string]bool, len(resp.Errors)+len(resp.Conflicts))
	for _, e := range resp.Errors {
		rejected[e.ID] = true
		result.fail(e.ID, "upload", errors.New(e.Message))
	}
	for _, c := range resp.Conflicts {
		rejected[c.RecordID] = true
	}

	for _, rec := range batch {
		if rejected[rec.ID] {
			continue
		}
		stored, ok := resp.Versions[rec.ID]
		if !ok {
			stored = rec.Version
		}
		if err := s.markSynced(ctx, rec.Kind, rec.ID, versions[rec.ID], stored); err != nil {
			result.fail(rec.ID, "upload", err)
			continue
		}
		result.Uploaded++
	}
	return resp.Conflicts
}

// handleConflicts применяет стратегию к конфликтам, найденным сервером
func (s *SyncService) handleConflicts(ctx context.Context, briefs []sync.ConflictBrief, result *SyncResult) {
	result.Conflicts += len(briefs)

	if s.strategy == StrategyManual {
		for _, b := range briefs {
			if err := s.setState(ctx, b.Kind, b.RecordID, StateConflict); err != nil {
				result.fail(b.RecordID, "conflict", err)
			}
		}
		return
	}

	open, err := s.remote.Conflicts(ctx)
	if err != nil {
		for _, b := range briefs {
			result.fail(b.RecordID, "conflict", err)
		}
		return
	}
	byID := make(map[int]sync.Conflict, len(open))
	for _, c := range open {
		byID[c.ID] = c
	}

	for _, b := range briefs {
		c, ok := byID[b.ID]
		if !ok {
			continue
		}
		if err := s.resolve(ctx, c, ""); err != nil {
			result.fail(b.RecordID, "conflict", err)
			continue
		}
		result.Resolved++
	}
}

// Resolve разрешает открытый серверный конфликт вручную
func (s *SyncService) Resolve(ctx context.Context, conflictID int, resolution sync.Resolution) error {
	if resolution != sync.ResolveClient && resolution != sync.ResolveServer {
		return fmt.Errorf("%w: %q", sync.ErrInvalidResolution, resolution)
	}

	open, err := s.remote.Conflicts(ctx)
	if err != nil {
		return err
	}
	for _, c := range open {
		if c.ID == conflictID {
			return s.resolve(ctx, c, resolution)
		}
	}
	return fmt.Errorf("%w: %d", sync.ErrConflictNotFound, conflictID)
}

// resolve применяет решение к конфликту. Пустое решение выбирается стратегией.
func (s *SyncService) resolve(ctx context.Context, c sync.Conflict, resolution sync.Resolution) error {
	var server, local sync.EnhancedRecord
	if err := json.Unmarshal(c.ServerData, &server); err != nil {
		return fmt.Errorf("decode server record: %w", err)
	}
	if err := json.Unmarshal(c.LocalData, &local); err != nil {
		return fmt.Errorf("decode local record: %w", err)
	}

	if resolution == "" {
		var ok bool
		if resolution, ok = s.strategy.winner(local.UpdatedAt, server.UpdatedAt); !ok {
			return s.setState(ctx, c.Kind, c.RecordID, StateConflict)
		}
	}

	if err := s.remote.ResolveConflict(ctx, c.ID, sync.ResolveConflictRequest{Resolution: resolution}); err != nil {
		return err
	}

	if resolution == sync.ResolveServer {
		return s.applyRecord(ctx, server)
	}
	// сервер записал локальную копию поверх своей версии с номером на единицу больше
	return s.markSynced(ctx, c.Kind, c.RecordID, local.Version, server.Version+1)
}

func (s *SyncService) download(ctx context.Context, deviceID string, result *SyncResult, progress *sync.Progress, report func()) error {
	cursor, err := s.store.LastSyncTime(ctx)
	if err != nil {
		return err
	}

	var (
		until  *time.Time
		offset int
		failed bool
	)
	for {
		resp, err := s.remote.GetChanges(ctx, deviceID, changesRequest{
			LastSyncTime: cursor,
			Until:        until,
			Limit:        s.batchSize,
			Offset:       offset,
			Shape:        sync.ShapeEnhancedRecords,
		})
		if err != nil {
			result.fail("", "download", err)
			failed = true
			break
		}

		if until == nil {
			serverTime := resp.ServerTime
			until = &serverTime
			progress.TotalFoldersToDownload = resp.TotalFolders
			progress.TotalNotesToDownload = resp.TotalNotes
		}

		for _, rec := range ordered(resp.Records) {
			if err := s.applyIncoming(ctx, rec, result); err != nil {
				result.fail(rec.ID, "download", err)
				failed = true
				continue
			}
			result.Downloaded++
			if rec.Kind == sync.KindFolder {
				progress.FoldersDownloaded++
			} else {
				progress.NotesDownloaded++
			}
		}
		report()

		offset += len(resp.Records)
		if !resp.HasMore || len(resp.Records) == 0 {
			break
		}
	}

	if failed || until == nil {
		return nil
	}
	if err := s.store.SetLastSyncTime(ctx, *until); err != nil {
		return err
	}
	result.Cursor = *until
	return nil
}

// applyIncoming применяет серверную запись с учетом локальных изменений.
// Коллизия возникает, только если сервер ушел дальше базы локальной правки.
func (s *SyncService) applyIncoming(ctx context.Context, rec sync.EnhancedRecord, result *SyncResult) error {
	local, err := s.localMeta(ctx, rec.Kind, rec.ID)
	if errors.Is(err, ErrNotFound) {
		return s.applyRecord(ctx, rec)
	}
	if err != nil {
		return err
	}

	switch local.state {
	case StateConflict:
		return nil
	case StateSynced:
		if rec.Version < local.base {
			return nil
		}
		return s.applyRecord(ctx, rec)
	}

	if rec.Version <= local.base {
		// правка сделана поверх этой версии, ее примет выгрузка
		return nil
	}

	result.Conflicts++
	resolution, ok := s.strategy.winner(local.updated, rec.UpdatedAt)
	if !ok {
		s.log.Info("local changes kept for manual resolution", "record_id", rec.ID)
		return nil
	}
	result.Resolved++
	if resolution == sync.ResolveServer {
		return s.applyRecord(ctx, rec)
	}
	return s.outrank(ctx, rec)
}

// outrank переносит локальную правку на серверную версию:
// база становится серверной, версия поднимается выше нее,
// и следующая выгрузка перезапишет сервер.
func (s *SyncService) outrank(ctx context.Context, rec sync.EnhancedRecord) error {
	if rec.Kind == sync.KindFolder {
		f, err := s.store.GetFolder(ctx, rec.ID)
		if err != nil {
			return err
		}
		f.BaseVersion = rec.Version
		f.Version = max(f.Version, rec.Version+1)
		return s.store.SaveFolder(ctx, f)
	}
	n, err := s.store.GetNote(ctx, rec.ID)
	if err != nil {
		return err
	}
	n.BaseVersion = rec.Version
	n.Version = max(n.Version, rec.Version+1)
	return s.store.SaveNote(ctx, n)
}

// applyRecord сохраняет серверную запись как синхронизированную
func (s *SyncService) applyRecord(ctx context.Context, rec sync.EnhancedRecord) error {
	switch rec.Kind {
	case sync.KindFolder:
		f, err := sync.ToFolder(rec, 0)
		if err != nil {
			return err
		}
		return s.store.SaveFolder(ctx, &LocalFolder{Folder: f, State: StateSynced})
	case sync.KindNote:
		n, _, err := sync.ToNote(rec, 0)
		if err != nil {
			return err
		}
		return s.store.SaveNote(ctx, &LocalNote{Note: n, State: StateSynced})
	}
	return fmt.Errorf("%w: unknown kind %q", sync.ErrInvalidPayload, rec.Kind)
}

type localInfo struct {
	state   SyncState
	base    int
	updated time.Time
}

func (s *SyncService) localMeta(ctx context.Context, kind sync.Kind, id string) (localInfo, error) {
	if kind == sync.KindFolder {
		f, err := s.store.GetFolder(ctx, id)
		if err != nil {
			return localInfo{}, err
		}
		return localInfo{state: f.State, base: f.BaseVersion, updated: f.UpdatedAt}, nil
	}
	n, err := s.store.GetNote(ctx, id)
	if err != nil {
		return localInfo{}, err
	}
	return localInfo{state: n.State, base: n.BaseVersion, updated: n.UpdatedAt}, nil
}

func (s *SyncService) markSynced(ctx context.Context, kind sync.Kind, id string, sent, serverVersion int) error {
	if kind == sync.KindFolder {
		return s.store.MarkFolderSynced(ctx, id, sent, serverVersion)
	}
	return s.store.MarkNoteSynced(ctx, id, sent, serverVersion)
}

func (s *SyncService) setState(ctx context.Context, kind sync.Kind, id string, state SyncState) error {
	if kind == sync.KindFolder {
		return s.store.SetFolderState(ctx, id, state)
	}
	return s.store.SetNoteState(ctx, id, state)
}

// ordered ставит папки перед заметками, чтобы ссылки на папки разрешались
func ordered(records []sync.EnhancedRecord) []sync.EnhancedRecord {
	out := make([]sync.EnhancedRecord, 0, len(records))
	for _, r := range records {
		if r.Kind == sync.KindFolder {
			out = append(out, r)
		}
	}
	for _, r := range records {
		if r.Kind != sync.KindFolder {
			out = append(out, r)
		}
	}
	return out
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}
