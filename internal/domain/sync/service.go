package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"studynotes/internal/domain/note"
)

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// GetChanges возвращает изменения после указанного времени
	GetChanges(ctx context.Context, userID int, req GetChangesRequest) (*GetChangesResponse, error)

	// ProcessBatch обрабатывает пакет записей для синхронизации
	ProcessBatch(ctx context.Context, userID int, req BatchSyncRequest) (*BatchSyncResponse, error)

	// GetStatus возвращает текущий статус синхронизации
	GetStatus(ctx context.Context, userID int) (*SyncStatus, error)

	// GetConflicts возвращает список неразрешенных конфликтов
	GetConflicts(ctx context.Context, userID int) ([]Conflict, error)

	// ResolveConflict разрешает указанный конфликт
	ResolveConflict(ctx context.Context, userID, conflictID int, req ResolveConflictRequest) error

	// GetDevices возвращает список устройств пользователя
	GetDevices(ctx context.Context, userID int) ([]Device, error)

	// RemoveDevice удаляет устройство из списка синхронизации
	RemoveDevice(ctx context.Context, userID int, deviceID string) error

	// RegisterDevice отмечает обращение устройства
	RegisterDevice(ctx context.Context, userID int, deviceID, userAgent string) error

	GetStats(ctx context.Context, userID int) (*SyncStats, error)
}

// Service реализация сервиса синхронизации
type Service struct {
	repo   Repository
	log    *slog.Logger
	config *ServiceConfig
	now    func() time.Time
}

// NewService создает новый сервис синхронизации
func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}

	return &Service{
		repo:   repo,
		log:    log.With("component", "sync_service"),
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetChanges возвращает изменения после указанного времени
func (s *Service) GetChanges(ctx context.Context, userID int, req GetChangesRequest) (*GetChangesResponse, error) {
	started := time.Now()

	// Валидация параметров
	if req.Limit <= 0 {
		req.Limit = s.config.BatchSize
	}
	if req.Limit > s.config.MaxSyncRecords {
		req.Limit = s.config.MaxSyncRecords
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	until := req.Until
	if until.IsZero() {
		until = s.now()
	}

	changes, err := s.repo.ListChanges(ctx, userID, req.LastSyncTime, until, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get records for sync: %w", err)
	}

	resp := &GetChangesResponse{
		Records:    make([]EnhancedRecord, 0, len(changes)),
		HasMore:    len(changes) >= req.Limit,
		ServerTime: until,
	}
	if req.Offset == 0 {
		resp.TotalFolders, resp.TotalNotes, err = s.repo.CountChanges(ctx, userID, req.LastSyncTime, until)
		if err != nil {
			return nil, fmt.Errorf("failed to count changes: %w", err)
		}
	}

	for _, c := range changes {
		switch {
		case c.Folder != nil:
			resp.Records = append(resp.Records, FolderRecord(*c.Folder))
		case c.Note != nil && req.Shape == ShapeSimpleRecords:
			resp.Records = append(resp.Records, EnhancedRecord{SimpleRecord: ShapeSimpleNote(*c.Note)})
		case c.Note != nil:
			resp.Records = append(resp.Records, ShapeEnhanced(*c.Note))
		}
	}

	s.touch(ctx, userID, req.DeviceID)
	if err := s.repo.AddStats(ctx, userID, StatsDelta{
		Downloads: int64(len(resp.Records)),
		Duration:  time.Since(started),
	}); err != nil {
		s.log.Warn("Failed to update sync stats", "error", err)
	}

	return resp, nil
}

// ProcessBatch обрабатывает пакет записей для синхронизации
func (s *Service) ProcessBatch(ctx context.Context, userID int, req BatchSyncRequest) (*BatchSyncResponse, error) {
	started := time.Now()

	if len(req.Records) > s.config.MaxSyncRecords {
		return nil, fmt.Errorf("%w: batch of %d records exceeds %d", ErrInvalidPayload, len(req.Records), s.config.MaxSyncRecords)
	}

	// Проверяем лимит хранилища до любой записи. Заменяемые заметки
	// уже учтены в used, поэтому их текущий объем вычитается.
	var (
		incoming int64
		ids      []string
	)
	for _, rec := range req.Records {
		if rec.Kind != KindNote {
			continue
		}
		p, err := DecodeEnhanced(rec)
		if err != nil {
			continue
		}
		incoming += p.Size()
		ids = append(ids, rec.ID)
	}
	used, err := s.repo.StorageUsed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage usage: %w", err)
	}
	replaced, err := s.repo.NotesSize(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage usage: %w", err)
	}
	if used-replaced+incoming > s.config.StorageLimit {
		return nil, fmt.Errorf("%w: %d of %d bytes used, batch needs %d", ErrStorageLimit, used, s.config.StorageLimit, incoming-replaced)
	}

	resp := &BatchSyncResponse{Versions: make(map[string]int, len(req.Records))}
	for _, rec := range ordered(req.Records) {
		conflict, version, err := s.processRecord(ctx, userID, req.DeviceID, rec)
		switch {
		case err != nil:
			resp.Failed++
			resp.Errors = append(resp.Errors, RecordError{ID: rec.ID, Message: err.Error()})
		case conflict != nil:
			resp.Conflicts = append(resp.Conflicts, ConflictBrief{
				ID:       conflict.ID,
				RecordID: conflict.RecordID,
				Kind:     conflict.Kind,
				Type:     conflict.Type,
			})
		default:
			resp.Processed++
			resp.Versions[rec.ID] = version
		}
	}
	resp.ServerTime = s.now()

	s.touch(ctx, userID, req.DeviceID)
	if err := s.repo.AddStats(ctx, userID, StatsDelta{
		Uploads:   int64(resp.Processed),
		Conflicts: int64(len(resp.Conflicts)),
		Duration:  time.Since(started),
	}); err != nil {
		s.log.Warn("Failed to update sync stats", "error", err)
	}

	s.log.Debug("batch processed",
		"user_id", userID,
		"processed", resp.Processed,
		"failed", resp.Failed,
		"conflicts", len(resp.Conflicts),
	)
	return resp, nil
}

// ordered ставит папки перед заметками, сохраняя порядок внутри вида
func ordered(records []EnhancedRecord) []EnhancedRecord {
	out := make([]EnhancedRecord, 0, len(records))
	for _, r := range records {
		if r.Kind == KindFolder {
			out = append(out, r)
		}
	}
	for _, r := range records {
		if r.Kind != KindFolder {
			out = append(out, r)
		}
	}
	return out
}

// processRecord применяет одну запись и возвращает ее серверную версию.
// Запись принимается, если она новая или клиент правил текущую серверную
// версию. Повтор уже сохраненного состояния ничего не меняет. Остальное
// фиксируется как конфликт, серверная запись не трогается.
func (s *Service) processRecord(ctx context.Context, userID int, deviceID string, rec EnhancedRecord) (*Conflict, int, error) {
	switch rec.Kind {
	case KindFolder:
		return s.processFolder(ctx, userID, deviceID, rec)
	case KindNote:
		return s.processNote(ctx, userID, deviceID, rec)
	}
	return nil, 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, rec.Kind)
}

func (s *Service) processNote(ctx context.Context, userID int, deviceID string, rec EnhancedRecord) (*Conflict, int, error) {
	incoming, payload, err := ToNote(rec, userID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.checkFolder(ctx, userID, incoming.FolderID); err != nil {
		return nil, 0, err
	}

	existing, err := s.repo.GetNote(ctx, userID, incoming.ID)
	if errors.Is(err, note.ErrNotFound) {
		return nil, incoming.Version, s.repo.UpsertNote(ctx, &incoming)
	}
	if err != nil {
		return nil, 0, err
	}

	if rec.BaseVersion == existing.Version {
		if incoming.Version <= existing.Version {
			return nil, 0, fmt.Errorf("%w: version %d is not above base %d", ErrInvalidPayload, incoming.Version, rec.BaseVersion)
		}
		return nil, incoming.Version, s.repo.UpsertNote(ctx, &incoming)
	}

	server := ShapeEnhanced(*existing)
	if NoteHash(incoming, payload) == server.ContentHash && incoming.IsDeleted() == existing.IsDeleted() {
		return nil, existing.Version, nil
	}

	c, err := s.saveConflict(ctx, userID, deviceID, rec, server)
	return c, 0, err
}

func (s *Service) processFolder(ctx context.Context, userID int, deviceID string, rec EnhancedRecord) (*Conflict, int, error) {
	incoming, err := ToFolder(rec, userID)
	if err != nil {
		return nil, 0, err
	}

	existing, err := s.repo.GetFolder(ctx, userID, incoming.ID)
	if errors.Is(err, note.ErrFolderNotFound) {
		return nil, incoming.Version, s.repo.UpsertFolder(ctx, &incoming)
	}
	if err != nil {
		return nil, 0, err
	}

	if rec.BaseVersion == existing.Version {
		if incoming.Version <= existing.Version {
			return nil, 0, fmt.Errorf("%w: version %d is not above base %d", ErrInvalidPayload, incoming.Version, rec.BaseVersion)
		}
		return nil, incoming.Version, s.repo.UpsertFolder(ctx, &incoming)
	}

	server := FolderRecord(*existing)
	rec.ContentHash = FolderHash(incoming.Name, incoming.Color, incoming.SortOrder)
	if rec.ContentHash == server.ContentHash && incoming.IsDeleted() == existing.IsDeleted() {
		return nil, existing.Version, nil
	}

	c, err := s.saveConflict(ctx, userID, deviceID, rec, server)
	return c, 0, err
}

// checkFolder проверяет, что папка заметки принадлежит пользователю.
// Удаленная папка допустима: запись могла быть сделана до удаления.
func (s *Service) checkFolder(ctx context.Context, userID int, folderID *string) error {
	if folderID == nil {
		return nil
	}
	_, err := s.repo.GetFolder(ctx, userID, *folderID)
	if errors.Is(err, note.ErrFolderNotFound) {
		return fmt.Errorf("%w: folder %s not found", ErrInvalidPayload, *folderID)
	}
	return err
}

func (s *Service) saveConflict(ctx context.Context, userID int, deviceID string, local, server EnhancedRecord) (*Conflict, error) {
	localData, err := json.Marshal(local)
	if err != nil {
		return nil, fmt.Errorf("encode local record: %w", err)
	}
	serverData, err := json.Marshal(server)
	if err != nil {
		return nil, fmt.Errorf("encode server record: %w", err)
	}

	c := &Conflict{
		RecordID:   local.ID,
		Kind:       local.Kind,
		UserID:     userID,
		DeviceID:   deviceID,
		LocalData:  localData,
		ServerData: serverData,
		Type:       classify(local.IsDeleted(), server.IsDeleted()),
		CreatedAt:  s.now(),
	}
	if err := s.repo.SaveConflict(ctx, c); err != nil {
		return nil, fmt.Errorf("save conflict: %w", err)
	}
	s.log.Info("sync conflict recorded",
		"user_id", userID,
		"record_id", c.RecordID,
		"type", c.Type,
	)
	return c, nil
}

func classify(localDeleted, serverDeleted bool) ConflictType {
	switch {
	case localDeleted && !serverDeleted:
		return ConflictDeleteEdit
	case !localDeleted && serverDeleted:
		return ConflictEditDelete
	}
	return ConflictEditEdit
}

// GetStatus возвращает текущий статус синхронизации
func (s *Service) GetStatus(ctx context.Context, userID int) (*SyncStatus, error) {
	status, err := s.repo.GetSyncStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	status.StorageLimit = s.config.StorageLimit
	return status, nil
}

// GetConflicts возвращает список неразрешенных конфликтов
func (s *Service) GetConflicts(ctx context.Context, userID int) ([]Conflict, error) {
	conflicts, err := s.repo.ListConflicts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conflicts: %w", err)
	}
	return conflicts, nil
}

// ResolveConflict разрешает указанный конфликт. Для client и merged
// выбранная запись записывается поверх серверной с версией на единицу больше.
func (s *Service) ResolveConflict(ctx context.Context, userID, conflictID int, req ResolveConflictRequest) error {
	if !req.Resolution.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResolution, req.Resolution)
	}

	conflict, err := s.repo.GetConflict(ctx, userID, conflictID)
	if err != nil {
		return err
	}
	if conflict.Resolved {
		return ErrConflictResolved
	}

	var winner *EnhancedRecord
	switch req.Resolution {
	case ResolveClient:
		var rec EnhancedRecord
		if err := json.Unmarshal(conflict.LocalData, &rec); err != nil {
			return fmt.Errorf("decode local record: %w", err)
		}
		winner = &rec
	case ResolveMerged:
		if req.Record == nil {
			return fmt.Errorf("%w: merged resolution requires a record", ErrInvalidResolution)
		}
		if req.Record.ID != conflict.RecordID || req.Record.Kind != conflict.Kind {
			return fmt.Errorf("%w: merged record does not match conflict", ErrInvalidResolution)
		}
		winner = req.Record
	}

	if winner != nil {
		if err := s.overwrite(ctx, userID, *winner); err != nil {
			return err
		}
	}

	if err := s.repo.MarkResolved(ctx, conflictID, req.Resolution, s.now()); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}
	if err := s.repo.AddStats(ctx, userID, StatsDelta{Resolved: 1}); err != nil {
		s.log.Warn("Failed to update sync stats", "error", err)
	}
	return nil
}

// overwrite записывает запись поверх текущей серверной версии
func (s *Service) overwrite(ctx context.Context, userID int, rec EnhancedRecord) error {
	now := s.now()
	switch rec.Kind {
	case KindFolder:
		current, err := s.repo.GetFolder(ctx, userID, rec.ID)
		if err != nil {
			return err
		}
		rec.Version = current.Version + 1
		f, err := ToFolder(rec, userID)
		if err != nil {
			return err
		}
		f.UpdatedAt = now
		return s.repo.UpsertFolder(ctx, &f)
	case KindNote:
		current, err := s.repo.GetNote(ctx, userID, rec.ID)
		if err != nil {
			return err
		}
		rec.Version = current.Version + 1
		n, _, err := ToNote(rec, userID)
		if err != nil {
			return err
		}
		if err := s.checkFolder(ctx, userID, n.FolderID); err != nil {
			return err
		}
		n.UpdatedAt = now
		return s.repo.UpsertNote(ctx, &n)
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, rec.Kind)
}

// GetDevices возвращает список устройств пользователя
func (s *Service) GetDevices(ctx context.Context, userID int) ([]Device, error) {
	devices, err := s.repo.ListDevices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}
	return devices, nil
}

// RemoveDevice удаляет устройство из списка синхронизации
func (s *Service) RemoveDevice(ctx context.Context, userID int, deviceID string) error {
	return s.repo.DeleteDevice(ctx, userID, deviceID)
}

func (s *Service) RegisterDevice(ctx context.Context, userID int, deviceID, userAgent string) error {
	if deviceID == "" {
		return nil
	}
	now := s.now()
	return s.repo.TouchDevice(ctx, &Device{
		ID:        deviceID,
		UserID:    userID,
		Name:      deviceID,
		UserAgent: userAgent,
		LastSeen:  now,
		CreatedAt: now,
	})
}

func (s *Service) GetStats(ctx context.Context, userID int) (*SyncStats, error) {
	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync stats: %w", err)
	}
	return stats, nil
}

func (s *Service) touch(ctx context.Context, userID int, deviceID string) {
	if err := s.RegisterDevice(ctx, userID, deviceID, ""); err != nil {
		s.log.Warn("Failed to register device", "device_id", deviceID, "error", err)
	}
}
