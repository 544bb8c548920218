package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	PagesFile string // path to the generated pages configuration file

	// Upstream scraping
	UpstreamTimeout      time.Duration // per-request timeout for upstream calls
	UpstreamUserAgent    string        // optional UA override for upstream calls
	UpstreamMaxRedirects int           // redirect cap for upstream calls

	// Outward API
	APIMaxAge time.Duration // Cache-Control max-age on /api responses

	// Snapshot cache (optional, disabled when RedisAddr is empty)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration
	RedisRetryInterval  time.Duration
	RedisMaxWait        time.Duration
	RedisPingTimeout    time.Duration
	SnapshotTTL         time.Duration // how long scrape products stay cached
	PrewarmInterval     time.Duration // 0 = no background prewarming

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	// Rate limiting on the API surface
	RateBurst        int
	RateRefillPerMin int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MIRROR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MIRROR_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MIRROR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MIRROR_PRETTY_LOG", true),

		// Pages file
		PagesFile: requireEnv("MIRROR_PAGES_FILE"),

		// Upstream
		UpstreamTimeout:      mustDuration("MIRROR_UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamUserAgent:    getenv("MIRROR_UPSTREAM_USER_AGENT", ""),
		UpstreamMaxRedirects: getenvInt("MIRROR_UPSTREAM_MAX_REDIRECTS", 3),

		// Outward API
		APIMaxAge: mustDuration("MIRROR_API_MAX_AGE", 10*time.Second),

		// Snapshot cache
		RedisAddr:           getenv("MIRROR_REDIS_ADDR", ""),
		RedisUser:           getenv("MIRROR_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("MIRROR_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MIRROR_REDIS_DB", 0),
		RedisDT:             mustDuration("MIRROR_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("MIRROR_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("MIRROR_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("MIRROR_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("MIRROR_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("MIRROR_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("MIRROR_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("MIRROR_REDIS_PING_TIMEOUT", 5*time.Second),
		SnapshotTTL:         mustDuration("MIRROR_SNAPSHOT_TTL", 30*time.Second),
		PrewarmInterval:     mustDuration("MIRROR_PREWARM_INTERVAL", 0),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("MIRROR_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("MIRROR_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("MIRROR_TRUST_PROXY", false),

		// Rate limiting
		RateBurst:        getenvInt("MIRROR_RATE_BURST", 20),
		RateRefillPerMin: getenvInt("MIRROR_RATE_REFILL_PER_MIN", 60),
	}

	// Prewarming without a cache has nowhere to put its results.
	if cfg.RedisAddr == "" {
		cfg.PrewarmInterval = 0
	}

	return cfg
}

// CacheEnabled reports whether the optional snapshot cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
