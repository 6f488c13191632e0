// Маршруты API (все под /api/v1):
//
//	POST   /user/register, /user/login, /user/logout
//	GET    /health
//	CRUD   /notes, /notes/{id}; POST /notes/{id}/favorite, /notes/youtube
//	CRUD   /folders, /folders/{id}
//	POST   /uploads; GET /notes/{id}/source
//	POST   /notes/{id}/generate/{kind}, /notes/{id}/chat
//	GET    /transcript
//	       /sync/changes, /sync/batch, /sync/status, /sync/conflicts,
//	       /sync/devices, /sync/stats
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	folderAPI "studynotes/internal/app/server/api/http/folder"
	generateAPI "studynotes/internal/app/server/api/http/generate"
	healthAPI "studynotes/internal/app/server/api/http/health"
	"studynotes/internal/app/server/api/http/middleware"
	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/app/server/api/http/middleware/logger"
	noteAPI "studynotes/internal/app/server/api/http/note"
	syncAPI "studynotes/internal/app/server/api/http/sync"
	transcriptAPI "studynotes/internal/app/server/api/http/transcript"
	userAPI "studynotes/internal/app/server/api/http/user"
	"studynotes/internal/app/server/config"
	"studynotes/internal/domain/generate"
	"studynotes/internal/domain/note"
	"studynotes/internal/domain/session"
	"studynotes/internal/domain/sync"
	"studynotes/internal/domain/transcript"
	"studynotes/internal/domain/user"
	"studynotes/internal/infrastructure/objectstore"
	"studynotes/internal/infrastructure/storage/postgres"
)

const (
	title   = "Studynotes API"
	version = "1.0.0"
)

// Services доменные сервисы сервера
type Services struct {
	Session    *session.Service
	User       *user.Service
	Note       *note.Service
	Sync       *sync.Service
	Generate   *generate.Service
	Transcript transcript.Fetcher
}

// NewServices собирает сервисы поверх хранилища и внешних клиентов из конфигурации.
func NewServices(ctx context.Context, storage *postgres.Storage, cfg *config.Config, log *slog.Logger) (*Services, error) {
	pool := storage.Pool()

	scraper, err := transcript.NewScraper(transcript.Config{
		BaseURL:   cfg.Transcript.BaseURL,
		Language:  cfg.Transcript.Language,
		CacheSize: cfg.Transcript.CacheSize,
		Timeout:   cfg.Transcript.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("transcript scraper: %w", err)
	}

	// без бакета загрузки файлов отключены
	var store note.ObjectStore
	s3, err := objectstore.New(ctx, objectstore.Config{
		Region:     cfg.S3.Region,
		Endpoint:   cfg.S3.Endpoint,
		AccessKey:  cfg.S3.AccessKey,
		SecretKey:  cfg.S3.SecretKey,
		Bucket:     cfg.S3.Bucket,
		PresignTTL: cfg.S3.PresignTTL,
	}, log)
	switch {
	case err == nil:
		store = s3
	case errors.Is(err, objectstore.ErrNotConfigured):
		log.Warn("object storage disabled")
	default:
		return nil, fmt.Errorf("object storage: %w", err)
	}

	noteService := note.NewService(postgres.NewNoteRepository(pool, log), scraper, store, log)
	completer := generate.NewHTTPCompleter(generate.Config{
		URL:       cfg.Completion.URL,
		APIKey:    cfg.Completion.APIKey,
		Model:     cfg.Completion.Model,
		MaxTokens: cfg.Completion.MaxTokens,
		Timeout:   cfg.Completion.Timeout,
	})

	return &Services{
		Session: session.NewService(postgres.NewSessionRepository(pool, log), log),
		User:    user.NewService(postgres.NewUserRepository(pool, log), user.NewCredentialsValidator(), log),
		Note:    noteService,
		Sync: sync.NewService(postgres.NewSyncRepository(pool, log), log, &sync.ServiceConfig{
			BatchSize:      cfg.Sync.BatchSize,
			MaxSyncRecords: cfg.Sync.MaxSyncRecords,
			StorageLimit:   cfg.Sync.StorageLimit,
		}),
		Generate:   generate.NewService(noteService, completer, generate.NewPromptRenderer(cfg.Completion.MaxPromptRunes), log),
		Transcript: scraper,
	}, nil
}

type Handlers struct {
	Health     *healthAPI.Handler
	User       *userAPI.Handler
	Note       *noteAPI.Handler
	Folder     *folderAPI.Handler
	Sync       *syncAPI.Handler
	Generate   *generateAPI.Handler
	Transcript *transcriptAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(svc *Services, db healthAPI.Pinger, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	huma.NewError = apierror.New

	config := huma.DefaultConfig(title, version)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(svc, db, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Note.SetupRoutes(API)
	h.Folder.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Generate.SetupRoutes(API)
	h.Transcript.SetupRoutes(API)

	return mux
}

func handlers(svc *Services, db healthAPI.Pinger, log *slog.Logger) *Handlers {
	authMW := auth.New(svc.Session, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	// auth стоит первым, чтобы логгер видел пользователя
	private := func() huma.Middlewares {
		return middlewares.Add(authMW.Middleware(), loggerMW.Middleware()).GetAllAndClear()
	}
	public := func() huma.Middlewares {
		return middlewares.Add(loggerMW.Middleware()).GetAllAndClear()
	}

	return &Handlers{
		Health:     healthAPI.NewHandler(db, log, public()),
		User:       userAPI.NewHandler(svc.User, svc.Session, log, public()),
		Note:       noteAPI.NewHandler(svc.Note, log, private()),
		Folder:     folderAPI.NewHandler(svc.Note, log, private()),
		Sync:       syncAPI.NewHandler(svc.Sync, log, private()),
		Generate:   generateAPI.NewHandler(svc.Generate, log, private()),
		Transcript: transcriptAPI.NewHandler(svc.Transcript, log, private()),
	}
}
