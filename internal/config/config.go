// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration

	// Mail（認証コード送信用SMTP）
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// 認証コード
	EmailCodeTTL time.Duration

	// キャッシュ
	IdentityCacheSize int
	SettingsCacheSize int

	// 秘書レポート
	SecretaryTickInterval    time.Duration // ワーカーの巡回間隔
	SecretaryRefreshInterval time.Duration // レポート再生成までの最短間隔

	// Rate Limit
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.OpenAIAPIKey = getEnvString("OPENAI_API_KEY", "")
	cfg.OpenAIModel = getEnvString("OPENAI_MODEL", "o1-mini")
	cfg.OpenAIBaseURL = getEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1")
	cfg.OpenAITimeout = getEnvDuration("OPENAI_TIMEOUT", 120*time.Second)
	cfg.SMTPHost = getEnvString("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUser = getEnvString("SMTP_USER", "")
	cfg.SMTPPassword = getEnvString("SMTP_PASSWORD", "")
	cfg.MailFrom = getEnvString("MAIL_FROM", "app@studiouvu.com")
	cfg.EmailCodeTTL = getEnvDuration("EMAIL_CODE_TTL", 10*time.Minute)
	cfg.IdentityCacheSize = getEnvInt("IDENTITY_CACHE_SIZE", 4096)
	cfg.SettingsCacheSize = getEnvInt("SETTINGS_CACHE_SIZE", 4096)
	cfg.SecretaryTickInterval = getEnvDuration("SECRETARY_TICK_INTERVAL", 10*time.Minute)
	cfg.SecretaryRefreshInterval = getEnvDuration("SECRETARY_REFRESH_INTERVAL", time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
