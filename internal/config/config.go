// Package config はアプリケーション設定を環境変数と .env ファイルから読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config はサーバーとCLIが共有する設定です。
type Config struct {
	Port string

	Gemini GeminiConfig
	Upload UploadConfig
	Redis  RedisConfig
	DB     DBConfig

	Session SessionConfig

	// BrandCacheTTL が0の場合は翌朝8時までキャッシュします。
	BrandCacheTTL time.Duration
	SitePrefetch  bool
	VisionEnabled bool
	// VisionMinConfidence 未満のロゴはヒントにしません。
	VisionMinConfidence float64
	VisionMaxLogos      int

	CORSOrigins []string
	LogLevel    string
	LogFormat   string
}

// GeminiConfig はGemini API呼び出しの設定です。
type GeminiConfig struct {
	APIKey      string
	ScrapeModel string
	ImageModel  string
	VideoModel  string
	Timeout     time.Duration
	// RPM は1分あたりの最大呼び出し数です。0以下で無制限になります。
	RPM int
}

type UploadConfig struct {
	MaxBytes int64
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled はRedisのホストが設定されているかを返します。
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr は host:port 形式のアドレスを返します。
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type DBConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	// CookieSecure はCookieにSecure属性を付与するかどうかです。
	CookieSecure bool
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Load は .env（存在する場合）を読み込み、環境変数から設定を構築します。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env could not be loaded", "error", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("SCRAPE_MODEL", "gemini-2.5-flash")
	v.SetDefault("IMAGE_MODEL", "gemini-2.5-flash")
	v.SetDefault("VIDEO_MODEL", "gemini-2.5-pro")
	v.SetDefault("GEMINI_TIMEOUT", "120s")
	v.SetDefault("GEMINI_RPM", 30)
	v.SetDefault("MAX_UPLOAD_BYTES", 50<<20)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "file:brandai.db?cache=shared")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("BRAND_CACHE_TTL", "0s")
	v.SetDefault("SITE_PREFETCH", true)
	v.SetDefault("VISION_ENABLED", false)
	v.SetDefault("VISION_MIN_CONFIDENCE", 0.5)
	v.SetDefault("VISION_MAX_LOGOS", 3)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	return v
}

// FromViper はviperインスタンスから設定を組み立てて検証します。
func FromViper(v *viper.Viper) (*Config, error) {
	apiKey := v.GetString("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("API_KEY")
	}

	cfg := &Config{
		Port: v.GetString("PORT"),
		Gemini: GeminiConfig{
			APIKey:      apiKey,
			ScrapeModel: v.GetString("SCRAPE_MODEL"),
			ImageModel:  v.GetString("IMAGE_MODEL"),
			VideoModel:  v.GetString("VIDEO_MODEL"),
			Timeout:     v.GetDuration("GEMINI_TIMEOUT"),
			RPM:         v.GetInt("GEMINI_RPM"),
		},
		Upload: UploadConfig{MaxBytes: v.GetInt64("MAX_UPLOAD_BYTES")},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		DB: DBConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:      v.GetString("DB_DSN"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Session: SessionConfig{
			Secret:       v.GetString("SESSION_SECRET"),
			TTL:          v.GetDuration("SESSION_TTL"),
			CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		},
		BrandCacheTTL: v.GetDuration("BRAND_CACHE_TTL"),
		SitePrefetch:  v.GetBool("SITE_PREFETCH"),
		VisionEnabled: v.GetBool("VISION_ENABLED"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),

		VisionMinConfidence: v.GetFloat64("VISION_MIN_CONFIDENCE"),
		VisionMaxLogos:      v.GetInt("VISION_MAX_LOGOS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: DB_DRIVER must be sqlite or postgres, got %q", ErrInvalidConfig, c.DB.Driver)
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("%w: GEMINI_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_BYTES must be positive", ErrInvalidConfig)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

// LogSummary は起動時に設定の概要をログ出力します。秘密情報は出力しません。
func (c *Config) LogSummary() {
	if c.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set; scrape and critique requests will fail")
	}
	if c.Session.Secret == "" {
		slog.Warn("SESSION_SECRET is not set; a random secret is used and sessions will not survive restarts")
	}
	slog.Info("configuration loaded",
		"port", c.Port,
		"scrape_model", c.Gemini.ScrapeModel,
		"image_model", c.Gemini.ImageModel,
		"video_model", c.Gemini.VideoModel,
		"redis_enabled", c.Redis.Enabled(),
		"db_driver", c.DB.Driver,
		"vision_enabled", c.VisionEnabled,
	)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
