package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"studynotes/internal/app/client/config"
	"studynotes/internal/domain/generate"
	"studynotes/internal/domain/note"
	"studynotes/internal/domain/sync"
	"studynotes/internal/domain/transcript"
)

type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
	storage    *SQLiteStorage
	sync       *SyncService
	now        func() time.Time
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	strategy, err := ParseStrategy(cfg.ConflictStrategy)
	if err != nil {
		return nil, err
	}

	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	httpCl := NewHTTPClient(cfg.BaseURL(), cfg.RequestTimeout, log)

	app := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		storage:    storage,
		sync:       NewSyncService(httpCl, storage, cfg.LockPath, strategy, cfg.BatchSize, log),
		now:        func() time.Time { return time.Now().UTC() },
	}

	if token, err := app.loadToken(); err == nil && token != "" {
		httpCl.SetToken(token)
		log.Debug("token loaded from file")
	}

	return app, nil
}

func (a *App) Close() error {
	return a.storage.Close()
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

func (a *App) IsAuthenticated() bool {
	return a.httpClient.token != ""
}

func (a *App) Register(ctx context.Context, email, password string) (int, error) {
	return a.httpClient.Register(ctx, email, password)
}

// Login получает токен, сохраняет его и регистрирует устройство
func (a *App) Login(ctx context.Context, email, password string) error {
	token, err := a.httpClient.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.saveToken(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	deviceID, err := a.storage.DeviceID(ctx)
	if err != nil {
		return err
	}
	if err := a.httpClient.RegisterDevice(ctx, deviceID); err != nil {
		a.log.Warn("failed to register device", "error", err)
	}
	return nil
}

// Logout отзывает токен на сервере и удаляет его локально.
// Просроченный токен не мешает выходу.
func (a *App) Logout(ctx context.Context) error {
	if !a.IsAuthenticated() {
		return nil
	}
	if err := a.httpClient.Logout(ctx); err != nil && !errors.Is(err, ErrNotAuthorized) {
		return err
	}
	a.httpClient.SetToken("")
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (a *App) loadToken() (string, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) saveToken(token string) error {
	return os.WriteFile(a.config.TokenPath, []byte(token), 0o600)
}

func (a *App) requireAuth() error {
	if !a.IsAuthenticated() {
		return ErrNotAuthorized
	}
	return nil
}

func (a *App) ListNotes(ctx context.Context, filter NoteFilter) ([]*LocalNote, error) {
	return a.storage.ListNotes(ctx, filter)
}

// GetNote ищет заметку по полному идентификатору или его префиксу
func (a *App) GetNote(ctx context.Context, idOrPrefix string) (*LocalNote, error) {
	id, err := a.storage.ResolveNoteID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	n, err := a.storage.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.IsDeleted() {
		return nil, fmt.Errorf("%w: note %s is deleted", ErrNotFound, id)
	}
	return n, nil
}

// CreateNote создает заметку офлайн; на сервер она попадет при синхронизации
func (a *App) CreateNote(ctx context.Context, req note.CreateNoteRequest) (*LocalNote, error) {
	id, err := note.ResolveID(req.ID)
	if err != nil {
		return nil, err
	}
	title, err := note.NormalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := req.SourceType.Validate(); err != nil {
		return nil, err
	}
	tags, err := note.NormalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if req.FolderID != nil {
		folderID, err := a.liveFolderID(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		req.FolderID = &folderID
	}

	now := a.now()
	n := &LocalNote{
		Note: note.Note{
			ID:         id,
			FolderID:   req.FolderID,
			Title:      title,
			SourceType: req.SourceType,
			SourceURL:  strings.TrimSpace(req.SourceURL),
			Content:    req.Content,
			Status:     note.StatusPending,
			Favorite:   req.Favorite,
			Tags:       tags,
			Version:    1,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		State: StatePending,
	}
	if (req.SourceType == note.SourceText || req.SourceType == note.SourceVideo) && n.Content != "" {
		n.Status = note.StatusReady
	}

	if err := a.storage.SaveNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteNote оставляет надгробие, чтобы удаление дошло до сервера
func (a *App) DeleteNote(ctx context.Context, idOrPrefix string) error {
	n, err := a.GetNote(ctx, idOrPrefix)
	if err != nil {
		return err
	}
	now := a.now()
	n.DeletedAt = &now
	a.touchNote(n)
	return a.storage.SaveNote(ctx, n)
}

func (a *App) ToggleFavorite(ctx context.Context, idOrPrefix string) (*LocalNote, error) {
	n, err := a.GetNote(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	n.Favorite = !n.Favorite
	a.touchNote(n)
	if err := a.storage.SaveNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// touchNote фиксирует локальную правку. Запись в конфликте остается в конфликте.
func (a *App) touchNote(n *LocalNote) {
	n.Touch(a.now())
	if n.State != StateConflict {
		n.State = StatePending
	}
}

// CreateFromYouTube создает заметку на сервере по расшифровке видео
func (a *App) CreateFromYouTube(ctx context.Context, req note.YouTubeRequest) (*LocalNote, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	n, err := a.httpClient.CreateFromYouTube(ctx, req)
	if err != nil {
		return nil, err
	}
	local := &LocalNote{Note: *n, State: StateSynced}
	if err := a.storage.SaveNote(ctx, local); err != nil {
		return nil, err
	}
	return local, nil
}

// Generate запускает генерацию на сервере и кэширует обновленную заметку.
// Неотправленные правки сначала нужно синхронизировать.
func (a *App) Generate(ctx context.Context, idOrPrefix string, kind generate.Kind) (*generate.Result, error) {
	n, err := a.remoteNote(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	res, err := a.httpClient.Generate(ctx, n.ID, kind)
	if err != nil {
		return nil, err
	}
	if res.Note != nil {
		if err := a.storage.SaveNote(ctx, &LocalNote{Note: *res.Note, State: StateSynced}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (a *App) Chat(ctx context.Context, idOrPrefix string, history []generate.Message, message string) (string, error) {
	n, err := a.remoteNote(ctx, idOrPrefix)
	if err != nil {
		return "", err
	}
	return a.httpClient.Chat(ctx, n.ID, history, message)
}

func (a *App) remoteNote(ctx context.Context, idOrPrefix string) (*LocalNote, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	n, err := a.GetNote(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	if n.State != StateSynced {
		return nil, fmt.Errorf("note %s has unsynced changes, run `studynotes sync` first", n.ID)
	}
	return n, nil
}

func (a *App) Transcript(ctx context.Context, videoURL, lang string) (*transcript.Transcript, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.httpClient.Transcript(ctx, videoURL, lang)
}

func (a *App) ListFolders(ctx context.Context) ([]*LocalFolder, error) {
	return a.storage.ListFolders(ctx, false, "")
}

func (a *App) CreateFolder(ctx context.Context, req note.FolderRequest) (*LocalFolder, error) {
	id, err := note.ResolveID(req.ID)
	if err != nil {
		return nil, err
	}
	name, err := note.NormalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	color, err := note.NormalizeColor(req.Color)
	if err != nil {
		return nil, err
	}

	now := a.now()
	f := &LocalFolder{
		Folder: note.Folder{
			ID:        id,
			Name:      name,
			Color:     color,
			SortOrder: req.SortOrder,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		State: StatePending,
	}
	if err := a.storage.SaveFolder(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFolder помечает папку удаленной и переносит ее заметки в корень
func (a *App) DeleteFolder(ctx context.Context, idOrPrefix string) error {
	id, err := a.liveFolderID(ctx, idOrPrefix)
	if err != nil {
		return err
	}
	f, err := a.storage.GetFolder(ctx, id)
	if err != nil {
		return err
	}

	notes, err := a.storage.ListNotes(ctx, NoteFilter{FolderID: &id})
	if err != nil {
		return err
	}
	for _, n := range notes {
		n.FolderID = nil
		a.touchNote(n)
		if err := a.storage.SaveNote(ctx, n); err != nil {
			return err
		}
	}

	now := a.now()
	f.DeletedAt = &now
	f.Touch(now)
	if f.State != StateConflict {
		f.State = StatePending
	}
	return a.storage.SaveFolder(ctx, f)
}

func (a *App) liveFolderID(ctx context.Context, idOrPrefix string) (string, error) {
	id, err := a.storage.ResolveFolderID(ctx, idOrPrefix)
	if err != nil {
		return "", err
	}
	f, err := a.storage.GetFolder(ctx, id)
	if err != nil {
		return "", err
	}
	if f.IsDeleted() {
		return "", fmt.Errorf("%w: folder %s is deleted", ErrNotFound, id)
	}
	return id, nil
}

// Sync выполняет один проход синхронизации
func (a *App) Sync(ctx context.Context, direction sync.Direction, onProgress sync.ProgressFunc) (*SyncResult, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.sync.Sync(ctx, direction, onProgress)
}

// Watch синхронизирует каждые SyncInterval до отмены контекста
func (a *App) Watch(ctx context.Context, direction sync.Direction, onResult func(*SyncResult, error)) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	ticker := time.NewTicker(a.config.SyncInterval)
	defer ticker.Stop()

	for {
		onResult(a.sync.Sync(ctx, direction, nil))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *App) ResolveConflict(ctx context.Context, conflictID int, resolution sync.Resolution) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	return a.sync.Resolve(ctx, conflictID, resolution)
}

func (a *App) Conflicts(ctx context.Context) ([]sync.Conflict, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.httpClient.Conflicts(ctx)
}

func (a *App) ServerStatus(ctx context.Context) (*sync.SyncStatus, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.httpClient.SyncStatus(ctx)
}

func (a *App) Stats(ctx context.Context) (*sync.SyncStats, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.httpClient.Stats(ctx)
}

func (a *App) Devices(ctx context.Context) ([]sync.Device, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.httpClient.Devices(ctx)
}

func (a *App) RemoveDevice(ctx context.Context, deviceID string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	return a.httpClient.RemoveDevice(ctx, deviceID)
}

// LocalStatus сводка по локальному кэшу
func (a *App) LocalStatus(ctx context.Context) (Counts, error) {
	return a.storage.Counts(ctx)
}

func (a *App) ExportDir() string {
	return a.config.ExportDir
}
