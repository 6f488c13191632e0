package transcript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/exp/slog"
)

const (
	DefaultBaseURL     = "https://www.youtube.com"
	DefaultLanguage    = "en"
	DefaultCacheSize   = 256
	defaultHTTPTimeout = 20 * time.Second
	maxPageBytes       = 8 << 20
	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL, lang string) (*Transcript, error)
}

// Config настройки скрапера
type Config struct {
	BaseURL   string
	Language  string
	CacheSize int
	Timeout   time.Duration
}

// Scraper получает расшифровку видео со страницы YouTube.
// Каждый этап выполняется один раз, ошибка любого этапа прерывает запрос.
type Scraper struct {
	cfg        Config
	httpClient *http.Client
	cache      *lru.Cache[string, *Transcript]
	log        *slog.Logger
}

type Option func(*Scraper)

// WithHTTPClient подменяет http-клиент (в тестах).
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func NewScraper(cfg Config, log *slog.Logger, opts ...Option) (*Scraper, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	cache, err := lru.New[string, *Transcript](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("transcript cache: %w", err)
	}

	s := &Scraper{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		log:        log.With("component", "transcript"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fetch возвращает расшифровку видео по ссылке на выбранном языке.
func (s *Scraper) Fetch(ctx context.Context, rawURL, lang string) (*Transcript, error) {
	id, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = s.cfg.Language
	}

	key := id + "|" + strings.ToLower(lang)
	if cached, ok := s.cache.Get(key); ok {
		s.log.Debug("transcript cache hit", "video_id", id, "lang", lang)
		return cached, nil
	}

	page, err := s.get(ctx, s.cfg.BaseURL+"/watch?v="+url.QueryEscape(id), lang)
	if err != nil {
		return nil, err
	}

	pr, err := parsePlayerResponse(string(page))
	if err != nil {
		s.log.Debug("player response not parsed", "video_id", id, "error", err)
		return nil, err
	}

	title := strings.TrimSpace(pr.VideoDetails.Title)
	if title == "" {
		title = pageTitle(string(page))
	}

	track, ok := chooseTrack(pr.Captions.Renderer.CaptionTracks, lang)
	if !ok {
		reason := pr.PlayabilityStatus.Reason
		if reason == "" {
			reason = "video has no caption tracks"
		}
		return nil, fmt.Errorf("%w: %s", ErrNoCaptions, reason)
	}
	if track.BaseURL == "" {
		return nil, fmt.Errorf("%w: caption track without url", ErrParse)
	}

	xmlData, err := s.get(ctx, s.resolve(track.BaseURL), lang)
	if err != nil {
		return nil, err
	}

	segments, err := parseTimedText(xmlData)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: caption track is empty", ErrNoCaptions)
	}

	t := &Transcript{
		VideoID:  id,
		Title:    title,
		Author:   pr.VideoDetails.Author,
		Duration: time.Duration(lengthSeconds(pr.VideoDetails.LengthSeconds)) * time.Second,
		Language: track.LanguageCode,
		Segments: segments,
		Text:     JoinSegments(segments),
	}
	s.cache.Add(key, t)

	s.log.Info("transcript fetched",
		"video_id", id,
		"lang", t.Language,
		"segments", len(segments),
	)
	return t, nil
}

// resolve дополняет относительный baseUrl адресом сервиса.
func (s *Scraper) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return s.cfg.BaseURL + ref
}

func (s *Scraper) get(ctx context.Context, target, lang string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", lang)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: http %d", ErrNetwork, req.URL.Path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}
	return body, nil
}
