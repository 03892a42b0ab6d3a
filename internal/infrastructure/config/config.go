package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	LLM         LLMConfig        `mapstructure:"llm"`
	Transcribe  TranscribeConfig `mapstructure:"transcribe"`
	Dietary     DietaryConfig    `mapstructure:"dietary"`
	Document    DocumentConfig   `mapstructure:"document"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Session     SessionConfig    `mapstructure:"session"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Audio       AudioConfig      `mapstructure:"audio"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LLMConfig 對話補全服務設定（OpenAI 相容介面，預設 Groq）
type LLMConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// TranscribeConfig 語音轉文字設定
type TranscribeConfig struct {
	Backend    string        `mapstructure:"backend"` // whisper | remote
	WhisperBin string        `mapstructure:"whisper_bin"`
	ModelPath  string        `mapstructure:"model_path"`
	TempDir    string        `mapstructure:"temp_dir"`
	Language   string        `mapstructure:"language"`
	RemoteURL  string        `mapstructure:"remote_url"`
	RemoteKey  string        `mapstructure:"remote_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// DietaryConfig 飲食限制檢查設定
type DietaryConfig struct {
	Mode string `mapstructure:"mode"` // off | warn | enforce
}

// DocumentConfig PDF 輸出設定
type DocumentConfig struct {
	FontDir string `mapstructure:"font_dir"`
	Title   string `mapstructure:"title"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// SessionConfig 表單會話儲存設定
type SessionConfig struct {
	Store           string        `mapstructure:"store"` // memory | redis
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

// QueueConfig 轉錄隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AudioConfig 音訊上傳設定
type AudioConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時忽略）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("llm.api_key", "GROQ_API_KEY", "LLM_API_KEY")
	_ = v.BindEnv("llm.base_url", "LLM_BASE_URL")
	_ = v.BindEnv("llm.model", "LLM_MODEL")
	_ = v.BindEnv("llm.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("transcribe.backend", "TRANSCRIBE_BACKEND")
	_ = v.BindEnv("transcribe.whisper_bin", "WHISPER_BIN")
	_ = v.BindEnv("transcribe.model_path", "WHISPER_MODEL")
	_ = v.BindEnv("transcribe.remote_key", "TRANSCRIBE_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("dietary.mode", "DIETARY_MODE")
	_ = v.BindEnv("document.font_dir", "FONT_DIR")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("session.store", "SESSION_STORE")
	_ = v.BindEnv("session.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("session.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "llm_api_key:", MaskAPIKey(v.GetString("llm.api_key")), "llm_model:", v.GetString("llm.model"))

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 回傳只含預設值的設定，供測試與工具使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "cooking-buddy")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "240s")

	// LLM 設定
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama3-8b-8192")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", "60s")

	// 語音轉文字設定
	v.SetDefault("transcribe.backend", "whisper")
	v.SetDefault("transcribe.whisper_bin", "whisper-cli")
	v.SetDefault("transcribe.model_path", "models/ggml-base.bin")
	v.SetDefault("transcribe.temp_dir", "")
	v.SetDefault("transcribe.language", "auto")
	v.SetDefault("transcribe.remote_url", "https://api.groq.com/openai/v1")
	v.SetDefault("transcribe.model", "whisper-large-v3")
	v.SetDefault("transcribe.timeout", "120s")

	// 飲食限制檢查
	v.SetDefault("dietary.mode", "enforce")

	// PDF 設定
	v.SetDefault("document.font_dir", "fonts")
	v.SetDefault("document.title", "Your Cooking Buddy")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 會話設定
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.cleanup_interval", "5m")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.key_prefix", "cooking-buddy:session:")

	// 隊列設定
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.max_size", 20)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 音訊設定
	v.SetDefault("audio.max_size_bytes", 25*1024*1024) // 25MB

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// Validate 驗證設定
func Validate(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.LLM.BaseURL == "" {
		return fmt.Errorf("llm base url is required")
	}
	if config.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}

	switch config.Transcribe.Backend {
	case "whisper", "remote":
	default:
		return fmt.Errorf("unknown transcribe backend %q (supported: whisper, remote)", config.Transcribe.Backend)
	}

	switch config.Dietary.Mode {
	case "off", "warn", "enforce":
	default:
		return fmt.Errorf("unknown dietary mode %q (supported: off, warn, enforce)", config.Dietary.Mode)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	switch config.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q (supported: memory, redis)", config.Session.Store)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	return nil
}
