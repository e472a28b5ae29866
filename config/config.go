package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все настройки приложения
type Config struct {
	Port string
	DSN  string

	// TTL токенов по типу ("access", "refresh")
	TokenTypeTTL map[string]time.Duration

	// Redis для кеша сообщений чата (пусто — кеш выключен)
	RedisAddr string

	// MinIO для картинок товаров (пустой endpoint — in-memory заглушка)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load читает .env (если есть) и возвращает заполненный Config
func Load() (*Config, error) {
	// Попробуем загрузить файл .env — если его нет, просто пропускаем
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN must be set")
	}

	ttl := map[string]time.Duration{
		"access":  parseDuration(os.Getenv("ACCESS_TOKEN_TTL"), 15*time.Minute),
		"refresh": parseDuration(os.Getenv("REFRESH_TOKEN_TTL"), 30*24*time.Hour),
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "product-images"
	}

	return &Config{
		Port:           port,
		DSN:            dsn,
		TokenTypeTTL:   ttl,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    bucket,
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}, nil
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
