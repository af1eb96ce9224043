package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ProviderCount is the length of the fallback chain (OpenAI, then Gemini).
const ProviderCount = 2

// requestHeadroom is added on top of the full fallback chain so the last
// provider keeps its whole per-call budget.
const requestHeadroom = 15 * time.Second

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// ProviderSettings holds credentials and model choices for one generation backend.
type ProviderSettings struct {
	APIKey     string // empty => provider not configured
	BaseURL    string // optional override
	TextModel  string // long-form writing
	FastModel  string // inspiration snippets
	ImageModel string // drawing
}

// Configured reports whether credentials are present.
func (p ProviderSettings) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline on the HTTP surface, never below the full chain

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CORSOrigins  []string // allowed browser origins, "*" for any
	AllowedCIDRS []string // optional, restrict ops endpoints (healthz/readyz/infra)
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	RateBurst    int      // generation requests allowed in a burst per client IP
	RatePerMin   int      // generation requests refilled per minute per client IP
	DistDir      string   // optional built front-end assets, served with SPA fallback
	CatalogFile  string   // optional YAML catalog override

	// Providers, in priority order.
	OpenAI          ProviderSettings
	Gemini          ProviderSettings
	ProviderTimeout time.Duration // per provider call, expiry falls through to the next provider

	// Snapshot storage
	Storage    string // "sqlite" | "redis" | "memory"
	SQLitePath string // sqlite database file
	StateKey   string // key holding the serialized snapshot

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MUSE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MUSE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("MUSE_REQUEST_TIMEOUT", 0),

		// Logging
		LogLevel:  getenv("MUSE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MUSE_PRETTY_LOG", true),

		// HTTP surface
		CORSOrigins:  splitAndTrim(getenv("MUSE_CORS_ORIGINS", "*")),
		AllowedCIDRS: parseAllowedIPs(getenv("MUSE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("MUSE_TRUST_PROXY", false),
		RateBurst:    getenvInt("MUSE_RATE_BURST", 5),
		RatePerMin:   getenvInt("MUSE_RATE_PER_MIN", 10),
		DistDir:      getenv("MUSE_DIST_DIR", ""),
		CatalogFile:  getenv("MUSE_CATALOG_FILE", ""),

		// Providers
		OpenAI: ProviderSettings{
			APIKey:     getenv("OPENAI_API_KEY", ""),
			BaseURL:    getenv("OPENAI_BASE_URL", ""),
			TextModel:  getenv("MUSE_OPENAI_TEXT_MODEL", "gpt-4.1-mini"),
			FastModel:  getenv("MUSE_OPENAI_FAST_MODEL", "gpt-4.1-mini"),
			ImageModel: getenv("MUSE_OPENAI_IMAGE_MODEL", "gpt-image-1"),
		},
		Gemini: ProviderSettings{
			APIKey:     getenv("GEMINI_API_KEY", getenv("API_KEY", "")),
			BaseURL:    getenv("GEMINI_BASE_URL", ""),
			TextModel:  getenv("MUSE_GEMINI_TEXT_MODEL", "gemini-3-pro-preview"),
			FastModel:  getenv("MUSE_GEMINI_FAST_MODEL", "gemini-3-flash-preview"),
			ImageModel: getenv("MUSE_GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		},
		ProviderTimeout: mustDuration("MUSE_PROVIDER_TIMEOUT", 90*time.Second),

		// Storage
		Storage:    strings.ToLower(getenv("MUSE_STORAGE", StorageSQLite)),
		SQLitePath: getenv("MUSE_SQLITE_PATH", defaultSQLitePath()),
		StateKey:   getenv("MUSE_STATE_KEY", "muse:app_state"),

		// Redis settings
		RedisAddr:           getenv("MUSE_REDIS_ADDR", ""),
		RedisUser:           getenv("MUSE_REDIS_USERNAME", ""),
		RedisPassword:       getenv("MUSE_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MUSE_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	cfg.RequestTimeout = requestTimeout(cfg.RequestTimeout, cfg.ProviderTimeout)

	switch cfg.Storage {
	case StorageSQLite, StorageMemory:
	case StorageRedis:
		cfg.RedisAddr = requireEnv("MUSE_REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: MUSE_STORAGE must be sqlite, redis or memory, got %q", cfg.Storage))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.OpenAI.APIKey = redact(cfg.OpenAI.APIKey)
		cfgCopy.Gemini.APIKey = redact(cfg.Gemini.APIKey)
		cfgCopy.RedisPassword = redact(cfg.RedisPassword)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// requestTimeout returns the HTTP deadline for a generation request. Unset,
// it covers every provider timing out in turn plus headroom. Set shorter
// than the chain, it is raised so a timeout still falls through.
func requestTimeout(requested, perProvider time.Duration) time.Duration {
	chain := perProvider*ProviderCount + requestHeadroom
	if requested <= 0 {
		return chain
	}
	if requested < chain {
		log.Printf("[WARN] MUSE_REQUEST_TIMEOUT=%s is shorter than the provider chain, using %s\n", requested, chain)
		return chain
	}
	return requested
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "muse.db"
	}
	return filepath.Join(home, ".muse", "state.db")
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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
