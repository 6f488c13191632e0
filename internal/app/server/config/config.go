package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"studynotes/internal/config"
)

const (
	envPath = "../../.env"

	defaultRunAddress     = ":8080"
	defaultMigrations     = "migrations"
	defaultYouTubeBaseURL = "https://www.youtube.com"
	defaultCompletionURL  = "https://api.openai.com/v1/chat/completions"
	defaultModel          = "gpt-4o-mini"
	defaultStorageLimit   = 100 * 1024 * 1024
)

type Config struct {
	Env        string
	DB         DB
	Server     Server
	Logger     Logger
	S3         S3
	Completion Completion
	Transcript Transcript
	Sync       Sync
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// S3 настройки объектного хранилища для исходных файлов заметок (MinIO или AWS)
type S3 struct {
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PresignTTL time.Duration
}

// Completion настройки прокси для AI-генерации
type Completion struct {
	URL            string
	APIKey         string
	Model          string
	MaxTokens      int
	MaxPromptRunes int
	Timeout        time.Duration
}

type Transcript struct {
	BaseURL   string
	Language  string
	CacheSize int
	Timeout   time.Duration
}

type Sync struct {
	StorageLimit   int64
	BatchSize      int
	MaxSyncRecords int
}

// MustLoad читает конфигурацию сервера из .env и переменных окружения.
func MustLoad() *Config {
	config.LoadEnv(".env", envPath)

	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Load собирает конфигурацию через viper, не трогая файловую систему.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("app_env", config.EnvLocal)
	v.SetDefault("run_address", defaultRunAddress)
	v.SetDefault("migrations_path", defaultMigrations)
	v.SetDefault("log_level", "info")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_bucket", "studynotes")
	v.SetDefault("s3_presign_ttl", 15*time.Minute)
	v.SetDefault("completion_url", defaultCompletionURL)
	v.SetDefault("completion_model", defaultModel)
	v.SetDefault("completion_max_tokens", 2048)
	v.SetDefault("completion_max_prompt_runes", 48000)
	v.SetDefault("completion_timeout", 90*time.Second)
	v.SetDefault("youtube_base_url", defaultYouTubeBaseURL)
	v.SetDefault("transcript_language", "en")
	v.SetDefault("transcript_cache_size", 256)
	v.SetDefault("transcript_timeout", 20*time.Second)
	v.SetDefault("storage_limit_bytes", defaultStorageLimit)
	v.SetDefault("sync_batch_size", 100)
	v.SetDefault("sync_max_records", 1000)

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: DB{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: Server{RunAddress: v.GetString("run_address")},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		S3: S3{
			Region:     v.GetString("s3_region"),
			Endpoint:   v.GetString("s3_endpoint"),
			AccessKey:  v.GetString("s3_access_key"),
			SecretKey:  v.GetString("s3_secret_key"),
			Bucket:     v.GetString("s3_bucket"),
			PresignTTL: v.GetDuration("s3_presign_ttl"),
		},
		Completion: Completion{
			URL:            v.GetString("completion_url"),
			APIKey:         v.GetString("completion_api_key"),
			Model:          v.GetString("completion_model"),
			MaxTokens:      v.GetInt("completion_max_tokens"),
			MaxPromptRunes: v.GetInt("completion_max_prompt_runes"),
			Timeout:        v.GetDuration("completion_timeout"),
		},
		Transcript: Transcript{
			BaseURL:   v.GetString("youtube_base_url"),
			Language:  v.GetString("transcript_language"),
			CacheSize: v.GetInt("transcript_cache_size"),
			Timeout:   v.GetDuration("transcript_timeout"),
		},
		Sync: Sync{
			StorageLimit:   v.GetInt64("storage_limit_bytes"),
			BatchSize:      v.GetInt("sync_batch_size"),
			MaxSyncRecords: v.GetInt("sync_max_records"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.RunAddress == "" {
		return fmt.Errorf("run_address must not be empty")
	}
	if c.Transcript.CacheSize <= 0 {
		return fmt.Errorf("transcript_cache_size must be positive")
	}
	if c.Sync.BatchSize <= 0 || c.Sync.MaxSyncRecords < c.Sync.BatchSize {
		return fmt.Errorf("sync_batch_size must be positive and not exceed sync_max_records")
	}
	return nil
}
