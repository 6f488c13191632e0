package note

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"studynotes/internal/domain/transcript"
)

// ObjectStore выдает presigned-ссылки на исходные файлы заметок
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error)
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

type Servicer interface {
	ListNotes(ctx context.Context, userID int, filter Filter) ([]Note, error)
	GetNote(ctx context.Context, userID int, id string) (*Note, error)
	CreateNote(ctx context.Context, userID int, req CreateNoteRequest) (*Note, error)
	UpdateNote(ctx context.Context, userID int, id string, req UpdateNoteRequest) (*Note, error)
	DeleteNote(ctx context.Context, userID int, id string) error
	ToggleFavorite(ctx context.Context, userID int, id string) (*Note, error)

	ListFolders(ctx context.Context, userID int) ([]Folder, error)
	CreateFolder(ctx context.Context, userID int, req FolderRequest) (*Folder, error)
	UpdateFolder(ctx context.Context, userID int, id string, req FolderRequest) (*Folder, error)
	DeleteFolder(ctx context.Context, userID int, id string) error

	CreateFromYouTube(ctx context.Context, userID int, req YouTubeRequest) (*Note, error)
	RequestUpload(ctx context.Context, userID int, req UploadRequest) (*UploadTicket, error)
	SourceURL(ctx context.Context, userID int, id string) (string, time.Time, error)
}

type Service struct {
	repo       Repository
	transcript transcript.Fetcher
	store      ObjectStore
	log        *slog.Logger
	now        func() time.Time
}

// NewService собирает сервис заметок. store может быть nil,
// тогда загрузка файлов недоступна.
func NewService(repo Repository, fetcher transcript.Fetcher, store ObjectStore, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		transcript: fetcher,
		store:      store,
		log:        log.With("component", "note_service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListNotes(ctx context.Context, userID int, filter Filter) ([]Note, error) {
	if filter.SourceType != "" {
		if err := filter.SourceType.Validate(); err != nil {
			return nil, err
		}
	}
	if filter.Tag != "" {
		filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	}
	filter.Query = strings.TrimSpace(filter.Query)
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	notes, err := s.repo.ListNotes(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// GetNote возвращает живую заметку пользователя.
func (s *Service) GetNote(ctx context.Context, userID int, id string) (*Note, error) {
	n, err := s.repo.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n.IsDeleted() {
		return nil, ErrDeleted
	}
	return n, nil
}

func (s *Service) CreateNote(ctx context.Context, userID int, req CreateNoteRequest) (*Note, error) {
	id, err := ResolveID(req.ID)
	if err != nil {
		return nil, err
	}
	title, err := NormalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := req.SourceType.Validate(); err != nil {
		return nil, err
	}
	tags, err := NormalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.checkFolder(ctx, userID, req.FolderID); err != nil {
		return nil, err
	}

	now := s.now()
	n := &Note{
		ID:         id,
		UserID:     userID,
		FolderID:   req.FolderID,
		Title:      title,
		SourceType: req.SourceType,
		SourceURL:  strings.TrimSpace(req.SourceURL),
		Content:    req.Content,
		Status:     StatusPending,
		Favorite:   req.Favorite,
		Tags:       tags,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if (req.SourceType == SourceText || req.SourceType == SourceVideo) && n.Content != "" {
		n.Status = StatusReady
	}

	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.log.Debug("note created", "user_id", userID, "note_id", n.ID, "source", n.SourceType)
	return n, nil
}

func (s *Service) UpdateNote(ctx context.Context, userID int, id string, req UpdateNoteRequest) (*Note, error) {
	n, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Version != n.Version {
		return nil, fmt.Errorf("%w: expected %d, current %d", ErrVersionConflict, req.Version, n.Version)
	}

	if req.Title != nil {
		title, err := NormalizeTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		n.Title = title
	}
	if req.Tags != nil {
		tags, err := NormalizeTags(req.Tags)
		if err != nil {
			return nil, err
		}
		n.Tags = tags
	}
	if req.Status != nil {
		if err := req.Status.Validate(); err != nil {
			return nil, err
		}
		n.Status = *req.Status
	}
	switch {
	case req.ClearFolder:
		n.FolderID = nil
	case req.FolderID != nil:
		if err := s.checkFolder(ctx, userID, req.FolderID); err != nil {
			return nil, err
		}
		n.FolderID = req.FolderID
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.AIContent != nil {
		n.AIContent = *req.AIContent
	}
	if req.Sections != nil {
		n.Sections = req.Sections
	}
	if req.MindMap != nil {
		n.MindMap = req.MindMap
	}
	if req.Supplementary != nil {
		n.Supplementary = req.Supplementary
	}
	if req.Favorite != nil {
		n.Favorite = *req.Favorite
	}

	return n, s.save(ctx, n)
}

// DeleteNote помечает заметку удаленной, чтобы удаление дошло до других устройств.
func (s *Service) DeleteNote(ctx context.Context, userID int, id string) error {
	n, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return err
	}
	now := s.now()
	n.DeletedAt = &now
	return s.save(ctx, n)
}

func (s *Service) ToggleFavorite(ctx context.Context, userID int, id string) (*Note, error) {
	n, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	n.Favorite = !n.Favorite
	return n, s.save(ctx, n)
}

// Save сохраняет изменения заметки, повышая версию на единицу.
// Используется и другими сервисами, которые меняют содержимое заметок.
func (s *Service) Save(ctx context.Context, n *Note) error {
	return s.save(ctx, n)
}

func (s *Service) save(ctx context.Context, n *Note) error {
	expected, updated := n.Version, n.UpdatedAt
	n.Touch(s.now())
	if err := s.repo.UpdateNote(ctx, n, expected); err != nil {
		n.Version, n.UpdatedAt = expected, updated
		if errors.Is(err, ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

func (s *Service) checkFolder(ctx context.Context, userID int, folderID *string) error {
	if folderID == nil {
		return nil
	}
	f, err := s.repo.GetFolder(ctx, userID, *folderID)
	if err != nil {
		return err
	}
	if f.IsDeleted() {
		return ErrFolderNotFound
	}
	return nil
}

func (s *Service) ListFolders(ctx context.Context, userID int) ([]Folder, error) {
	folders, err := s.repo.ListFolders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *Service) CreateFolder(ctx context.Context, userID int, req FolderRequest) (*Folder, error) {
	id, err := ResolveID(req.ID)
	if err != nil {
		return nil, err
	}
	name, err := NormalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	color, err := NormalizeColor(req.Color)
	if err != nil {
		return nil, err
	}

	now := s.now()
	f := &Folder{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Color:     color,
		SortOrder: req.SortOrder,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateFolder(ctx, f); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

func (s *Service) UpdateFolder(ctx context.Context, userID int, id string, req FolderRequest) (*Folder, error) {
	f, err := s.liveFolder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Version != f.Version {
		return nil, fmt.Errorf("%w: expected %d, current %d", ErrVersionConflict, req.Version, f.Version)
	}

	name, err := NormalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	color := f.Color
	if req.Color != "" {
		if color, err = NormalizeColor(req.Color); err != nil {
			return nil, err
		}
	}

	expected := f.Version
	f.Name = name
	f.Color = color
	f.SortOrder = req.SortOrder
	f.Touch(s.now())
	if err := s.repo.UpdateFolder(ctx, f, expected); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFolder мягко удаляет папку; ее заметки остаются без папки.
func (s *Service) DeleteFolder(ctx context.Context, userID int, id string) error {
	f, err := s.liveFolder(ctx, userID, id)
	if err != nil {
		return err
	}
	expected := f.Version
	now := s.now()
	f.DeletedAt = &now
	f.Touch(now)
	if err := s.repo.DeleteFolder(ctx, f, expected, now); err != nil {
		return err
	}
	s.log.Debug("folder deleted", "user_id", userID, "folder_id", id)
	return nil
}

func (s *Service) liveFolder(ctx context.Context, userID int, id string) (*Folder, error) {
	f, err := s.repo.GetFolder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if f.IsDeleted() {
		return nil, ErrFolderNotFound
	}
	return f, nil
}

// CreateFromYouTube создает видеозаметку с расшифровкой в качестве содержимого.
func (s *Service) CreateFromYouTube(ctx context.Context, userID int, req YouTubeRequest) (*Note, error) {
	t, err := s.transcript.Fetch(ctx, req.URL, req.Language)
	if err != nil {
		s.log.Warn("transcript fetch failed", "url", req.URL, "error", err)
		return nil, err
	}

	title := t.Title
	if strings.TrimSpace(title) == "" {
		title = "YouTube " + t.VideoID
	}
	if len([]rune(title)) > MaxTitleLen {
		title = string([]rune(title)[:MaxTitleLen])
	}

	return s.CreateNote(ctx, userID, CreateNoteRequest{
		FolderID:   req.FolderID,
		Title:      title,
		SourceType: SourceVideo,
		SourceURL:  "https://www.youtube.com/watch?v=" + t.VideoID,
		Content:    t.Text,
		Tags:       []string{"youtube"},
	})
}

// RequestUpload выдает ссылку для загрузки исходника в объектное хранилище.
// Ключ привязан к пользователю, чтобы ссылки не пересекались.
func (s *Service) RequestUpload(ctx context.Context, userID int, req UploadRequest) (*UploadTicket, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	name := path.Base(strings.TrimSpace(req.Filename))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: filename is empty", ErrInvalidInput)
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("users/%d/%s/%s", userID, uuid.NewString(), name)
	url, exp, err := s.store.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadTicket{Key: key, URL: url, ExpiresAt: exp}, nil
}

// SourceURL выдает ссылку на скачивание загруженного исходника заметки.
func (s *Service) SourceURL(ctx context.Context, userID int, id string) (string, time.Time, error) {
	if s.store == nil {
		return "", time.Time{}, ErrStorageDisabled
	}
	n, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return "", time.Time{}, err
	}
	prefix := fmt.Sprintf("users/%d/", userID)
	if !strings.HasPrefix(n.SourceURL, prefix) {
		return "", time.Time{}, fmt.Errorf("%w: note has no uploaded source", ErrNotFound)
	}
	return s.store.PresignGet(ctx, n.SourceURL)
}
