// internal/config/config.go
package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	Cache   CacheConfig
	Export  ExportConfig
	Server  ServerConfig
	App     AppConfig
}

type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type SessionConfig struct {
	File string
}

type CacheConfig struct {
	Backend            string // "memory" or "redis"
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	POListTTLSeconds   int
	SummaryTTLSeconds  int
	RefreshPollSeconds int
}

type ExportConfig struct {
	Dir       string
	S3Enabled bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type AppConfig struct {
	LogLevel string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("ROLLSOPS_API_BASE_URL", "")
		viper.SetDefault("ROLLSOPS_API_TIMEOUT_SECONDS", 30)
		viper.SetDefault("ROLLSOPS_SESSION_FILE", defaultSessionFile())
		viper.SetDefault("CACHE_BACKEND", "memory")
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_PO_LIST_TTL_SECONDS", 60)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 180*60)
		viper.SetDefault("CACHE_REFRESH_POLL_SECONDS", 30)
		viper.SetDefault("EXPORT_DIR", "./data/exports")
		viper.SetDefault("EXPORT_S3_ENABLED", false)
		viper.SetDefault("EXPORT_S3_ENDPOINT", "")
		viper.SetDefault("EXPORT_S3_ACCESS_KEY", "")
		viper.SetDefault("EXPORT_S3_SECRET_KEY", "")
		viper.SetDefault("EXPORT_S3_BUCKET", "")
		viper.SetDefault("EXPORT_S3_REGION", "us-east-1")
		viper.SetDefault("EXPORT_S3_USE_SSL", true)
		viper.SetDefault("SERVER_PORT", "8090")
		viper.SetDefault("SERVER_MODE", "release")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("LOG_LEVEL", "info")

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure the export directory exists
		ensureDir(viper.GetString("EXPORT_DIR"))

		instance = &Config{
			API: APIConfig{
				BaseURL:        viper.GetString("ROLLSOPS_API_BASE_URL"),
				TimeoutSeconds: viper.GetInt("ROLLSOPS_API_TIMEOUT_SECONDS"),
			},
			Session: SessionConfig{
				File: viper.GetString("ROLLSOPS_SESSION_FILE"),
			},
			Cache: CacheConfig{
				Backend:            viper.GetString("CACHE_BACKEND"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				POListTTLSeconds:   viper.GetInt("CACHE_PO_LIST_TTL_SECONDS"),
				SummaryTTLSeconds:  viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
				RefreshPollSeconds: viper.GetInt("CACHE_REFRESH_POLL_SECONDS"),
			},
			Export: ExportConfig{
				Dir:       viper.GetString("EXPORT_DIR"),
				S3Enabled: viper.GetBool("EXPORT_S3_ENABLED"),
				Endpoint:  viper.GetString("EXPORT_S3_ENDPOINT"),
				AccessKey: viper.GetString("EXPORT_S3_ACCESS_KEY"),
				SecretKey: viper.GetString("EXPORT_S3_SECRET_KEY"),
				Bucket:    viper.GetString("EXPORT_S3_BUCKET"),
				Region:    viper.GetString("EXPORT_S3_REGION"),
				UseSSL:    viper.GetBool("EXPORT_S3_USE_SSL"),
			},
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			App: AppConfig{
				LogLevel: viper.GetString("LOG_LEVEL"),
			},
		}
	})

	return instance
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.rollsops/session.json"
	}
	return filepath.Join(home, ".rollsops", "session.json")
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
