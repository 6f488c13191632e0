package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// LoadEnv подгружает первый найденный .env файл из списка путей.
// Отсутствие файла не ошибка: переменные могут прийти из окружения.
func LoadEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("failed to load %s: %v", p, err)
		}
		return
	}
	log.Println("No .env file found, relying on environment variables")
}
