package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinSecretKeyLength はHS512署名に必要な秘密鍵の最小バイト長。
const MinSecretKeyLength = 64

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	Auth AuthConfig

	// Password
	BcryptCost int

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitLogin   int

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string

	// CORS
	CORSAllowedOrigin string
}

// AuthConfig はトークン発行・検証と認証ゲートの設定。
type AuthConfig struct {
	Issuer        string
	Audience      string
	SecretKey     []byte
	TokenValidity time.Duration
	Location      *time.Location
	// ExtraExemptPaths はデフォルトの認証除外パスに追加するパスプレフィックス。
	ExtraExemptPaths []string
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

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if len(secret) < MinSecretKeyLength {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes, got %d", MinSecretKeyLength, len(secret))
	}

	zone := getEnvString("TIME_ZONE", "Africa/Lagos")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", zone, err)
	}

	validity := getEnvInt64("JWT_TOKEN_VALIDITY", 86400)
	if validity <= 0 {
		return nil, fmt.Errorf("JWT_TOKEN_VALIDITY must be positive, got %d", validity)
	}

	cfg.Auth = AuthConfig{
		Issuer:           getEnvString("JWT_ISSUER", "automata-api"),
		Audience:         getEnvString("JWT_AUDIENCE", "automata-clients"),
		SecretKey:        []byte(secret),
		TokenValidity:    time.Duration(validity) * time.Second,
		Location:         loc,
		ExtraExemptPaths: getEnvList("AUTH_EXEMPT_PATHS"),
	}

	// Optional fields with defaults
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 12)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	for key, v := range map[string]int{
		"RATE_LIMIT_GENERAL": cfg.RateLimitGeneral,
		"RATE_LIMIT_LOGIN":   cfg.RateLimitLogin,
	} {
		// 0以下ではバースト0のリミッタになり全リクエストが429になる
		if v <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", key, v)
		}
	}
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvList はカンマ区切りの環境変数を空要素を除いたスライスとして返す。
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
