package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/kapu/gacha-tracker-go/internal/constants"
	"github.com/kapu/gacha-tracker-go/internal/util"
)

// Config: 가챠 트래커 서비스 전체 동작에 필요한 설정을 담는 구조체
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Progress ProgressConfig
	Logging  LoggingConfig
	Version  string
}

// ServerConfig: HTTP API 서버 설정
type ServerConfig struct {
	Port   int
	APIKey string // 비어있으면 API 키 검증이 비활성화된다
}

// PostgresConfig: PostgreSQL 접속 정보
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ProgressConfig: 진행 상태 저장소 백엔드 설정
// Backend가 "valkey"면 Valkey 기반 저장소를, 그 외에는 인메모리 저장소를 사용한다.
type ProgressConfig struct {
	Backend  string
	Host     string
	Port     int
	Password string
	DB       int
}

// LoggingConfig: 로그 레벨 및 파일 로테이션 설정
type LoggingConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load: .env 및 환경 변수에서 설정을 읽고 검증한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:   getEnvInt("SERVER_PORT", 30010),
			APIKey: util.TrimSpace(getEnv("API_SECRET_KEY", "")),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", constants.DatabaseDefaults.Host),
			Port:     getEnvInt("POSTGRES_PORT", constants.DatabaseDefaults.Port),
			User:     getEnv("POSTGRES_USER", constants.DatabaseDefaults.User),
			Password: getEnv("POSTGRES_PASSWORD", constants.DatabaseDefaults.Password),
			Database: getEnv("POSTGRES_DB", constants.DatabaseDefaults.Database),
		},
		Progress: ProgressConfig{
			Backend:  getEnv("PROGRESS_BACKEND", "memory"),
			Host:     getEnv("CACHE_HOST", "localhost"),
			Port:     getEnvInt("CACHE_PORT", 6379),
			Password: getEnv("CACHE_PASSWORD", ""),
			DB:       getEnvInt("CACHE_DB", 0),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Dir:        getEnv("LOG_DIR", "logs"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Version: util.TrimSpace(getEnv("APP_VERSION", "1.0.0-go")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate: 필수 설정값이 누락되지 않았는지 검증한다.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required")
	}
	switch c.Progress.Backend {
	case "memory", "valkey":
	default:
		return fmt.Errorf("PROGRESS_BACKEND must be \"memory\" or \"valkey\", got %q", c.Progress.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
