package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// App holds the service settings that are not connection strings.
type App struct {
	Port string

	MaxUploadBytes  int64
	ClassifyWorkers int
	RulesPath       string

	ArchiveBucket string
	ArchiveDir    string

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration

	CacheTTL    time.Duration
	AutoMigrate bool
}

// LoadApp reads App from the environment and applies defaults.
func LoadApp() (App, error) {
	var errs []error

	cfg := App{
		Port:              envOr("PORT", "8080"),
		RulesPath:         strings.TrimSpace(os.Getenv("RULES_PATH")),
		ArchiveBucket:     strings.TrimSpace(os.Getenv("ARCHIVE_BUCKET")),
		ArchiveDir:        envOr("ARCHIVE_DIR", "./backup"),
		AdminUsername:     envOr("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		JWTSecret:         os.Getenv("ADMIN_JWT_SECRET"),
		AutoMigrate:       os.Getenv("POSTGRES_AUTO_MIGRATE") == "true",
	}

	mb, err := envInt("MAX_UPLOAD_MB", 10)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.MaxUploadBytes = int64(mb) << 20

	if cfg.ClassifyWorkers, err = envInt("CLASSIFY_WORKERS", 4); err != nil {
		errs = append(errs, err)
	}
	if cfg.TokenTTL, err = envDuration("ADMIN_TOKEN_TTL", 12*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}

	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	return cfg, errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
