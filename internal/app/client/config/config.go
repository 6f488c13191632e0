package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"studynotes/internal/config"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultConfigDir     = ".studynotes"
	defaultStrategy      = "newer"
)

type Config struct {
	Env              string
	ServerAddress    string
	EnableTLS        bool
	ConfigDir        string
	TokenPath        string
	DataPath         string
	LockPath         string
	ExportDir        string
	SyncInterval     time.Duration
	ConflictStrategy string
	BatchSize        int
	RequestTimeout   time.Duration
}

// MustLoad читает .env, необязательный файл конфигурации и окружение.
// Пустой cfgFile означает поиск config.yaml в директории клиента.
func MustLoad(cfgFile string) *Config {
	config.LoadEnv(".env", "../.env")

	cfg, err := Load(viper.New(), cfgFile)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	if err := os.MkdirAll(cfg.ConfigDir, 0o700); err != nil {
		panic(fmt.Sprintf("config: create %s: %v", cfg.ConfigDir, err))
	}
	return cfg
}

// Load собирает конфигурацию клиента. Пути внутри CONFIG_DIR вычисляются
// после чтения переменных, поэтому их можно переопределить только целиком.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("app_env", config.EnvLocal)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("enable_tls", false)
	v.SetDefault("config_dir", filepath.Join(home, defaultConfigDir))
	v.SetDefault("sync_interval_seconds", 30)
	v.SetDefault("conflict_strategy", defaultStrategy)
	v.SetDefault("sync_batch_size", 50)
	v.SetDefault("request_timeout", 60*time.Second)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(v.GetString("config_dir"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	dir := v.GetString("config_dir")
	cfg := &Config{
		Env:              v.GetString("app_env"),
		ServerAddress:    v.GetString("server_address"),
		EnableTLS:        v.GetBool("enable_tls"),
		ConfigDir:        dir,
		TokenPath:        filepath.Join(dir, "token"),
		DataPath:         filepath.Join(dir, "notes.db"),
		LockPath:         filepath.Join(dir, "sync.lock"),
		ExportDir:        filepath.Join(dir, "export"),
		SyncInterval:     time.Duration(v.GetInt("sync_interval_seconds")) * time.Second,
		ConflictStrategy: v.GetString("conflict_strategy"),
		BatchSize:        v.GetInt("sync_batch_size"),
		RequestTimeout:   v.GetDuration("request_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("config_dir must not be empty")
	}
	switch c.ConflictStrategy {
	case "client", "server", "newer", "manual":
	default:
		return fmt.Errorf("unknown conflict_strategy %q", c.ConflictStrategy)
	}
	if c.BatchSize <= 0 || c.BatchSize > 1000 {
		return fmt.Errorf("sync_batch_size must be within 1..1000")
	}
	return nil
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}
