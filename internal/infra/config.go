package infra

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	Port                 string
	PublicBaseURL        string
	DatabaseURL          string
	RedisURL             string
	HistoryBackend       string
	StoragePath          string
	APIKeyPepper         string
	DefaultKeyRateLimit  int
	PollinationsBaseURL  string
	TranslateBaseURL     string
	TranslateLangPair    string
	ImageSourceAllowlist []string
	GeoIPDBPath          string
	CORSAllowedOrigins   []string
	FFmpegPath           string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOBucket          string
	MinIOUseSSL          bool
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	UpstreamTimeout      time.Duration
	RateLimitPerMin      int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                port,
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		HistoryBackend:      strings.ToLower(getEnv("HISTORY_BACKEND", "redis")),
		StoragePath:         getEnv("STORAGE_PATH", "./data"),
		APIKeyPepper:        os.Getenv("API_KEY_PEPPER"),
		DefaultKeyRateLimit: getEnvInt("DEFAULT_KEY_RATE_LIMIT", 60),
		PollinationsBaseURL: getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"),
		TranslateBaseURL:    getEnv("TRANSLATE_BASE_URL", "https://api.mymemory.translated.net"),
		TranslateLangPair:   getEnv("TRANSLATE_LANGPAIR", "ar|en"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		FFmpegPath:          getEnv("FFMPEG_PATH", "ffmpeg"),
		MinIOEndpoint:       os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:      os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:      os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "imagecraft-exports"),
		MinIOUseSSL:         getEnvBool("MINIO_USE_SSL", false),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		UpstreamTimeout:     time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
	cfg.ImageSourceAllowlist = buildAllowlist(
		splitList(os.Getenv("IMAGE_SOURCE_HOST_ALLOWLIST")),
		cfg.PollinationsBaseURL,
		cfg.PublicBaseURL,
	)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.APIKeyPepper == "" {
		return nil, fmt.Errorf("API_KEY_PEPPER is required")
	}
	switch cfg.HistoryBackend {
	case "redis", "file":
	default:
		return nil, fmt.Errorf("HISTORY_BACKEND must be redis or file, got %q", cfg.HistoryBackend)
	}
	if cfg.HistoryBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the redis history backend")
	}

	return cfg, nil
}

func buildAllowlist(explicit []string, baseURLs ...string) []string {
	set := map[string]struct{}{}
	for _, raw := range baseURLs {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			set[strings.ToLower(u.Hostname())] = struct{}{}
		}
	}
	for _, host := range explicit {
		set[strings.ToLower(host)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for host := range set {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
