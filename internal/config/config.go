package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// minBcryptCost はパスワードハッシュのコスト下限。これ未満の指定は引き上げる。
const minBcryptCost = 10

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session token
	JWTSecret string

	// Guest account
	GuestEmail    string
	GuestPassword string

	// Password hashing
	BcryptCost int

	// Server
	ServerPort string

	// Cookie
	CookieSecure bool

	// CORS
	FrontendURL string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数は上書きしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GuestEmail = strings.TrimSpace(os.Getenv("GUEST_EMAIL"))
	if cfg.GuestEmail == "" {
		missing = append(missing, "GUEST_EMAIL")
	}

	cfg.GuestPassword = os.Getenv("GUEST_PASSWORD")
	if cfg.GuestPassword == "" {
		missing = append(missing, "GUEST_PASSWORD")
	}

	cfg.FrontendURL = strings.TrimRight(os.Getenv("FRONTEND_URL"), "/")
	if cfg.FrontendURL == "" {
		missing = append(missing, "FRONTEND_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("PORT", "3000")
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", true)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", minBcryptCost)
	if cfg.BcryptCost < minBcryptCost {
		cfg.BcryptCost = minBcryptCost
	}

	return cfg, nil
}

// loadDotEnv は指定パスの.envファイルを読み込む。ファイルが無い場合は何もしない。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
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

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
