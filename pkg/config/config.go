package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the API server
type Config struct {
	Server    ServerConfig
	Firebase  FirebaseConfig
	GCP       GCPConfig
	Storage   StorageConfig
	Docstore  DocstoreConfig
	Upload    UploadConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig holds Firebase Admin SDK settings
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// GCPConfig holds Google Cloud project settings shared by Firestore and Vertex AI
type GCPConfig struct {
	ProjectID string
	Region    string
}

// StorageConfig holds blob storage configuration
type StorageConfig struct {
	Type      string // gcs, local
	Bucket    string
	LocalPath string
}

// DocstoreConfig holds document database configuration
type DocstoreConfig struct {
	Type string // firestore, memory
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxFileSize  int64
	MinFileSize  int64
	AllowedTypes []string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds request rate limiting settings
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int
}

// AuthConfig holds token verification settings
type AuthConfig struct {
	Mode      string // firebase, static
	JWTSecret string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// CORSConfig holds allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", "no-smoking-app"),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		GCP: GCPConfig{
			ProjectID: getEnv("GCP_PROJECT_ID", "no-smoking-app"),
			Region:    getEnv("GCP_REGION", "us-central1"),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "gcs"),
			Bucket:    getEnv("GCS_BUCKET_NAME", "no-smoking-app-bucket"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		},
		Docstore: DocstoreConfig{
			Type: getEnv("DOCSTORE_TYPE", "firestore"),
		},
		Upload: UploadConfig{
			MaxFileSize:  getEnvInt64("UPLOAD_MAX_FILE_SIZE", 10*1024*1024),
			MinFileSize:  getEnvInt64("UPLOAD_MIN_FILE_SIZE", 1024),
			AllowedTypes: getEnvList("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png"}),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvBool("RATE_LIMIT_ENABLED", false),
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		},
		Auth: AuthConfig{
			Mode:      getEnv("AUTH_MODE", "firebase"),
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}
}

// RedisAddr returns the Redis connection address
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
