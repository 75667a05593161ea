package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	AI          AIConfig
	Quiz        QuizConfig
	Persistence PersistenceConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Tracing     TracingConfig   `mapstructure:"tracing"`
	CORS        CORSConfig      `mapstructure:"cors"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	// 传输层超时，不是业务超时：长文档出题可能要跑很久
	Timeout time.Duration `mapstructure:"timeout_seconds"`
}

type QuizConfig struct {
	MaxQuestions     int `mapstructure:"max_questions"`
	DefaultQuestions int `mapstructure:"default_questions"`
}

// PersistenceConfig 会话快照的持久化后端。
// file 是默认值，redis/mysql 只有显式配置时才会初始化对应连接。
type PersistenceConfig struct {
	Driver      string `mapstructure:"driver"`
	FilePath    string `mapstructure:"file_path"`
	SnapshotKey string `mapstructure:"snapshot_key"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("QUIZMASTER")
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Persistence
	viper.BindEnv("persistence.driver", "PERSISTENCE_DRIVER")
	viper.BindEnv("persistence.file_path", "PERSISTENCE_FILE_PATH")

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.AI.Timeout = cfg.AI.Timeout * time.Second

	if cfg.Quiz.MaxQuestions <= 0 {
		cfg.Quiz.MaxQuestions = 20
	}
	if cfg.Quiz.DefaultQuestions <= 0 {
		cfg.Quiz.DefaultQuestions = 5
	}
	if cfg.Quiz.DefaultQuestions > cfg.Quiz.MaxQuestions {
		cfg.Quiz.DefaultQuestions = cfg.Quiz.MaxQuestions
	}

	if cfg.Persistence.Driver == "" {
		cfg.Persistence.Driver = "file"
	}
	if cfg.Persistence.FilePath == "" {
		cfg.Persistence.FilePath = "data/sessions.json"
	}
	if cfg.Persistence.SnapshotKey == "" {
		cfg.Persistence.SnapshotKey = "quizmaster:sessions"
	}

	// 生产环境必须配置 AI Key，否则出题和批改都无法工作
	if cfg.Server.Mode == "release" && cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key is required in release mode")
	}

	if cfg.Persistence.Driver == "file" {
		dir := filepath.Dir(cfg.Persistence.FilePath)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.MkdirAll(dir, 0755)
		}
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
