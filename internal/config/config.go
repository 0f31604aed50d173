package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Generation providers.
const (
	LLMOpenAI = "openai"
	LLMOllama = "ollama"
	LLMNone   = "none"
)

// Media backends.
const (
	MediaInline = "inline"
	MediaS3     = "s3"
)

// Auth modes.
const (
	AuthCode     = "code"
	AuthFirebase = "firebase"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Media    MediaConfig
	Auth     AuthConfig
	Backup   BackupConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type StoreConfig struct {
	Backend  string
	FilePath string
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type LLMConfig struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	OllamaURL string
	RateLimit float64
	Burst     int
}

type MediaConfig struct {
	Backend       string
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

type AuthConfig struct {
	Mode                    string
	AccessCode              string
	FirebaseCredentialsPath string
}

type BackupConfig struct {
	Schedule string
	Dir      string
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
	GinMode     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", StoreFile)),
			FilePath: getEnv("STORE_FILE", "data/articles.json"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "velara"),
			Password: getEnv("DB_PASS", ""),
			Name:     getEnv("DB_NAME", "velara"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Key:      getEnv("REDIS_KEY", "velara_articles"),
		},
		LLM: LLMConfig{
			Provider:  strings.ToLower(getEnv("LLM_PROVIDER", LLMOpenAI)),
			APIKey:    firstEnv("LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"),
			Model:     getEnv("LLM_MODEL", "gemini-2.0-flash"),
			BaseURL:   getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
			OllamaURL: getEnv("LLM_URL", "http://host.docker.internal:11434/api/generate"),
			RateLimit: getEnvAsFloat("LLM_RATE_LIMIT", 0),
			Burst:     getEnvAsInt("LLM_BURST", 1),
		},
		Media: MediaConfig{
			Backend:       strings.ToLower(getEnv("MEDIA_BACKEND", MediaInline)),
			Bucket:        getEnv("MEDIA_BUCKET", ""),
			Region:        getEnv("AWS_REGION", "us-east-1"),
			Prefix:        getEnv("MEDIA_PREFIX", "covers"),
			PublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", ""),
		},
		Auth: AuthConfig{
			Mode:                    strings.ToLower(getEnv("AUTH_MODE", AuthCode)),
			AccessCode:              getEnv("ADMIN_ACCESS_CODE", "334510"),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Backup: BackupConfig{
			Schedule: getEnv("BACKUP_SCHEDULE", ""),
			Dir:      getEnv("BACKUP_DIR", "backups"),
		},
		App: AppConfig{
			Name:        getEnv("APP_NAME", "velara"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "dev"),
			GinMode:     getEnv("GIN_MODE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StorePostgres:
	case StoreFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("STORE_FILE is required for the file store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (valid: memory, file, redis, postgres)", c.Store.Backend)
	}

	switch c.LLM.Provider {
	case LLMOpenAI, LLMOllama, LLMNone:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (valid: openai, ollama, none)", c.LLM.Provider)
	}

	switch c.Media.Backend {
	case MediaInline:
	case MediaS3:
		if c.Media.Bucket == "" {
			return fmt.Errorf("MEDIA_BUCKET is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q (valid: inline, s3)", c.Media.Backend)
	}

	switch c.Auth.Mode {
	case AuthCode:
		if c.Auth.AccessCode == "" {
			return fmt.Errorf("ADMIN_ACCESS_CODE is required for code auth")
		}
	case AuthFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for firebase auth")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (valid: code, firebase)", c.Auth.Mode)
	}

	return nil
}

// BackupEnabled reports whether the scheduled snapshot job should run.
func (c *Config) BackupEnabled() bool {
	return c.Backup.Schedule != "" && c.Backup.Dir != ""
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
