package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"imagedrop/internal/domain/intake"
	"imagedrop/internal/pkg/validator"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "imagedrop.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "24h"
	defaultUploadsDir    = "./uploads"
	defaultStaticURLBase = "/static/uploads"
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
)

type Config struct {
	AppEnv             string        `validate:"required"`
	HTTPAddr           string        `validate:"required"`
	DatabaseURL        string        `validate:"required"`
	JWTSecret          string        `validate:"required,min=8"`
	JWTTTL             time.Duration `validate:"gt=0"`
	UploadsDir         string        `validate:"required"`
	StaticURLBase      string        `validate:"required,startswith=/"`
	ImageMaxBytes      int64         `validate:"gt=0"`
	ArchiveMaxBytes    int64         `validate:"gt=0"`
	EntryConcurrency   int           `validate:"gte=0"`
	LogLevel           string        `validate:"oneof=debug info warn warning error"`
	LogFormat          string        `validate:"oneof=text json"`
	CORSAllowedOrigins []string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.UploadsDir = strings.TrimSpace(getEnv("UPLOADS_DIR", defaultUploadsDir))
	cfg.StaticURLBase = strings.TrimSpace(getEnv("STATIC_URL_BASE", defaultStaticURLBase))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.ImageMaxBytes, err = parseInt64Env("IMAGE_MAX_BYTES", intake.ImageSizeLimit)
	if err != nil {
		return nil, err
	}

	cfg.ArchiveMaxBytes, err = parseInt64Env("ARCHIVE_MAX_BYTES", intake.ArchiveSizeLimit)
	if err != nil {
		return nil, err
	}

	concurrency, err := parseInt64Env("ENTRY_CONCURRENCY", 0)
	if err != nil {
		return nil, err
	}
	cfg.EntryConcurrency = int(concurrency)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy is the intake policy with the configured limits.
func (c *Config) Policy() intake.Policy {
	p := intake.DefaultPolicy()
	p.Image.MaxBytes = c.ImageMaxBytes
	p.Archive.MaxBytes = c.ArchiveMaxBytes
	return p
}

// LogValue keeps the secret out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("app_env", c.AppEnv),
		slog.String("http_addr", c.HTTPAddr),
		slog.String("uploads_dir", c.UploadsDir),
		slog.Int64("image_max_bytes", c.ImageMaxBytes),
		slog.Int64("archive_max_bytes", c.ArchiveMaxBytes),
		slog.Int("entry_concurrency", c.EntryConcurrency),
	)
}

func validateConfig(cfg *Config) error {
	if err := validator.Error(cfg); err != nil {
		return err
	}
	if isProdLike(cfg.AppEnv) && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseListEnv(name string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
