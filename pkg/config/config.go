// Файл: pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level string
	File  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// AuditConfig - лимиты журнала аудита.
type AuditConfig struct {
	// MaxEntries - сколько записей держим в памяти.
	MaxEntries int
	// MirrorSize - сколько последних записей дублируем в Redis.
	MirrorSize int
	MirrorKey  string
}

type Config struct {
	ShutdownTimeout time.Duration

	Server ServerConfig
	Log    LogConfig
	Redis  RedisConfig
	Audit  AuditConfig
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Audit: AuditConfig{
			MaxEntries: getEnvInt("AUDIT_MAX_ENTRIES", 1000),
			MirrorSize: getEnvInt("AUDIT_MIRROR_SIZE", 100),
			MirrorKey:  getEnv("AUDIT_MIRROR_KEY", "audit:logs:recent"),
		},
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", time.Second*10),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		log.Printf("Предупреждение: некорректное значение %s=%q, используется %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Предупреждение: некорректная длительность %s=%q, используется %s", key, value, fallback)
		return fallback
	}
	return parsed
}
