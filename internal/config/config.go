package config

import (
	"fmt"
	"log"
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

	// Provider
	YouTubeAPIKey string        // provider credential, held server-side only (optional; fetches fail with Unconfigured when empty)
	FetchTimeout  time.Duration // transport timeout for provider fetches (default: 10s)

	// Display
	DisplayLocale string // BCP 47 tag used for the locale-baked display snapshots (default: zh-CN)

	// Seed file
	SeedFile           string        // path to the optional seed yaml (empty = seeding disabled)
	SeedReloadInterval time.Duration // interval to reload the seed file (default: 24h)

	// Notices
	NoticeTTL           time.Duration // how long a transient notice stays active (default: 5s)
	NoticeSweepInterval time.Duration // interval to sweep expired notices (default: 1m)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Rate limit for the add-video endpoint
	RateBurst        int // token bucket capacity per client IP
	RateRefillPerMin int // tokens refilled per minute per client IP

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("TUBEMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TUBEMARK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("TUBEMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TUBEMARK_PRETTY_LOG", true),

		// Provider
		YouTubeAPIKey: getenv("YOUTUBE_API_KEY", ""),
		FetchTimeout:  mustDuration("TUBEMARK_FETCH_TIMEOUT", 10*time.Second),

		// Display
		DisplayLocale: getenv("TUBEMARK_DISPLAY_LOCALE", "zh-CN"),

		// Seed file
		SeedFile:           getenv("TUBEMARK_SEED_FILE", ""), // Optional, empty = seeding disabled
		SeedReloadInterval: mustDuration("TUBEMARK_SEED_RELOAD_INTERVAL", 24*time.Hour),

		// Notices
		NoticeTTL:           mustDuration("TUBEMARK_NOTICE_TTL", 5*time.Second),
		NoticeSweepInterval: mustDuration("TUBEMARK_NOTICE_SWEEP_INTERVAL", time.Minute),

		// Redis settings
		RedisAddr:             requireEnv("TUBEMARK_REDIS_ADDR"),
		RedisUser:             getenv("TUBEMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("TUBEMARK_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("TUBEMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("TUBEMARK_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Rate limiting
		RateBurst:        getenvInt("TUBEMARK_RATE_BURST", 5),
		RateRefillPerMin: getenvInt("TUBEMARK_RATE_REFILL_PER_MIN", 30),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("TUBEMARK_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("TUBEMARK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TUBEMARK_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: TUBEMARK_REDIS_PASSWORD is required when TUBEMARK_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.YouTubeAPIKey != "" {
			cfgCopy.YouTubeAPIKey = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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
		b, err := strconv.ParseBool(v)
		if err == nil {
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
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
