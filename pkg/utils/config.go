package utils

import (
	"os"
	"strconv"
	"time"
)

// Config is the aggregator's runtime configuration, loaded from environment
// variables so the same binary runs locally and on the hosting platform.
type Config struct {
	APIBase         string        // upstream API base, e.g. https://api.sansekai.my.id/api
	Port            int           // HTTP listen port
	MaxPages        int           // clamp for page params on browse routes
	CacheMaxPages   int           // pages per endpoint loaded into the catalog cache
	MaxRetries      int           // upstream retry limit for 429/timeout
	RetryDelay      time.Duration // base of the linear retry backoff
	RequestDelay    time.Duration // pacing between upstream page fetches
	LoadConcurrency int           // parallel page fetchers; 1 means sequential
	EmptyPageStop   int           // consecutive empty pages before a load stops
}

func LoadConfig() Config {
	return Config{
		APIBase:         getString("ANIMEHUB_API_BASE", "https://api.sansekai.my.id/api"),
		Port:            getInt("PORT", 8080),
		MaxPages:        getInt("MAX_PAGES", 100),
		CacheMaxPages:   getInt("CACHE_MAX_PAGES", 50),
		MaxRetries:      getInt("MAX_RETRIES", 3),
		RetryDelay:      getSeconds("RETRY_DELAY", 2*time.Second),
		RequestDelay:    getSeconds("REQUEST_DELAY", time.Second),
		LoadConcurrency: getInt("LOAD_CONCURRENCY", 1),
		EmptyPageStop:   getInt("EMPTY_PAGE_STOP", 2),
	}
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
	AdminHash   string // bcrypt hash of the admin password; empty disables auth
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ANIMEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("ANIMEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "animehub"
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: time.Duration(getInt("ANIMEHUB_JWT_TTL_HOURS", 24)) * time.Hour,
		AdminHash:   os.Getenv("ANIMEHUB_ADMIN_HASH"),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getSeconds parses a float number of seconds, matching how the original
// deployment expressed its delay knobs.
func getSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return time.Duration(f * float64(time.Second))
}
