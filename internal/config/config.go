package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultDownloadURL = "https://github.com/eynuts/LevelUp/releases/download/1.0.0/CampusChronicles.rar"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port              string
	StoreDriver       string
	DatabaseURL       string
	RedisURL          string
	FeedChannelPrefix string
	JWTSecret         string
	JWTIssuer         string
	JWTTTL            time.Duration
	IdentitySecret    string
	IdentityIssuer    string
	NotifyURL         string
	NotifyTimeout     time.Duration
	DownloadURL       string
	PaymentAmount     int64
	ReportTimezone    string
	CORSOrigins       []string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              fallback(os.Getenv("PORT"), "8080"),
		StoreDriver:       strings.ToLower(fallback(os.Getenv("STORE_DRIVER"), DriverPostgres)),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		FeedChannelPrefix: fallback(os.Getenv("FEED_CHANNEL_PREFIX"), "levelup:"),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:         fallback(os.Getenv("JWT_ISSUER"), "levelup-backend"),
		IdentitySecret:    strings.TrimSpace(os.Getenv("IDP_SECRET")),
		IdentityIssuer:    strings.TrimSpace(os.Getenv("IDP_ISSUER")),
		NotifyURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("NOTIFY_URL")), "/"),
		DownloadURL:       fallback(os.Getenv("DOWNLOAD_URL"), defaultDownloadURL),
		ReportTimezone:    fallback(os.Getenv("REPORT_TIMEZONE"), "Asia/Manila"),
		CORSOrigins:       parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	cfg.JWTTTL = time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute
	cfg.NotifyTimeout = time.Duration(positiveInt(os.Getenv("NOTIFY_TIMEOUT_SECONDS"), 10)) * time.Second
	cfg.PaymentAmount = int64(positiveInt(os.Getenv("PAYMENT_AMOUNT"), 100))

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.IdentitySecret == "" {
		return Config{}, errors.New("IDP_SECRET is required")
	}
	if _, err := time.LoadLocation(cfg.ReportTimezone); err != nil {
		return Config{}, fmt.Errorf("invalid REPORT_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location resolves ReportTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
