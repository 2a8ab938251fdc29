package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	envPrefix             = "SPOOLSHELF_"
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultShutdown       = 10 * time.Second
	defaultDataPath       = "data/filaments.json"
	defaultPricesPath     = "data/prices.json"
	defaultPageSize       = 12
	defaultVisibleLinks   = 5
	defaultSynthesisMode  = "omit"
	defaultLanguage       = "ru"
	defaultSessionCookie  = "spoolshelf_session"
	defaultSessionTTL     = 2 * time.Hour
	defaultSweepInterval  = 5 * time.Minute
	defaultSearchDebounce = 300 * time.Millisecond
	defaultGuidesCacheTTL = 5 * time.Minute
	defaultPriceInterval  = 2 * time.Second
	defaultPriceWorkers   = 2
	defaultPriceTimeout   = 15 * time.Second
	defaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultLogLevel       = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Catalog CatalogConfig
	Session SessionConfig
	UI      UIConfig
	Guides  GuidesConfig
	Prices  PricesConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig selects logger verbosity and encoding.
type LogConfig struct {
	Level       string
	Development bool
}

// CatalogConfig describes the dataset and the browsing pipeline.
type CatalogConfig struct {
	DataPath           string
	PricesPath         string
	PageSize           int
	VisiblePageLinks   int
	SynthesisMode      string
	SynthesisSeed      uint64
	Language           language.Tag
	PreferReviewRating bool
}

// SessionConfig controls the signed session cookie and per-session state lifetime.
type SessionConfig struct {
	CookieName    string
	SigningKey    string
	Secure        bool
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// UIConfig carries client-side behaviour knobs rendered into templates.
type UIConfig struct {
	SearchDebounce time.Duration
}

// GuidesConfig locates material guide content.
type GuidesConfig struct {
	OverrideDir string
	CacheTTL    time.Duration
}

// PricesConfig tunes marketplace price refresh.
type PricesConfig struct {
	Interval    time.Duration
	Concurrency int
	Timeout     time.Duration
	UserAgent   string
}

// ValidationError reports configuration fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration from, in increasing precedence, the .env file,
// the process environment and an explicit map. Keys carry the SPOOLSHELF_ prefix.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	var invalid []string

	tag, err := language.Parse(stringWithDefault(lookup, "CATALOG_LANGUAGE", defaultLanguage))
	if err != nil {
		invalid = append(invalid, "Catalog.Language")
		tag = language.Russian
	}
	seed, err := strconv.ParseUint(stringWithDefault(lookup, "CATALOG_SYNTHESIS_SEED", "1"), 10, 64)
	if err != nil {
		invalid = append(invalid, "Catalog.SynthesisSeed")
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "SERVER_PORT", defaultPort),
			ReadTimeout:     durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "SERVER_SHUTDOWN_TIMEOUT", defaultShutdown),
		},
		Log: LogConfig{
			Level:       strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
			Development: boolWithDefault(lookup, "LOG_DEVELOPMENT", false),
		},
		Catalog: CatalogConfig{
			DataPath:           stringWithDefault(lookup, "CATALOG_DATA_PATH", defaultDataPath),
			PricesPath:         stringWithDefault(lookup, "CATALOG_PRICES_PATH", defaultPricesPath),
			PageSize:           intWithDefault(lookup, "CATALOG_PAGE_SIZE", defaultPageSize),
			VisiblePageLinks:   intWithDefault(lookup, "CATALOG_VISIBLE_PAGE_LINKS", defaultVisibleLinks),
			SynthesisMode:      strings.ToLower(stringWithDefault(lookup, "CATALOG_SYNTHESIS", defaultSynthesisMode)),
			SynthesisSeed:      seed,
			Language:           tag,
			PreferReviewRating: boolWithDefault(lookup, "CATALOG_PREFER_REVIEW_RATING", false),
		},
		Session: SessionConfig{
			CookieName:    stringWithDefault(lookup, "SESSION_COOKIE", defaultSessionCookie),
			SigningKey:    stringWithDefault(lookup, "SESSION_SIGNING_KEY", ""),
			Secure:        boolWithDefault(lookup, "SESSION_SECURE", false),
			IdleTTL:       durationWithDefault(lookup, "SESSION_IDLE_TTL", defaultSessionTTL),
			SweepInterval: durationWithDefault(lookup, "SESSION_SWEEP_INTERVAL", defaultSweepInterval),
		},
		UI: UIConfig{
			SearchDebounce: durationWithDefault(lookup, "UI_SEARCH_DEBOUNCE", defaultSearchDebounce),
		},
		Guides: GuidesConfig{
			OverrideDir: stringWithDefault(lookup, "GUIDES_DIR", ""),
			CacheTTL:    durationWithDefault(lookup, "GUIDES_CACHE_TTL", defaultGuidesCacheTTL),
		},
		Prices: PricesConfig{
			Interval:    durationWithDefault(lookup, "PRICES_INTERVAL", defaultPriceInterval),
			Concurrency: intWithDefault(lookup, "PRICES_CONCURRENCY", defaultPriceWorkers),
			Timeout:     durationWithDefault(lookup, "PRICES_TIMEOUT", defaultPriceTimeout),
			UserAgent:   stringWithDefault(lookup, "PRICES_USER_AGENT", defaultUserAgent),
		},
	}

	invalid = append(invalid, validateConfig(cfg)...)
	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

func validateConfig(cfg Config) []string {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "Log.Level")
	}
	if strings.TrimSpace(cfg.Catalog.DataPath) == "" {
		invalid = append(invalid, "Catalog.DataPath")
	}
	if cfg.Catalog.PageSize <= 0 {
		invalid = append(invalid, "Catalog.PageSize")
	}
	if cfg.Catalog.VisiblePageLinks <= 0 {
		invalid = append(invalid, "Catalog.VisiblePageLinks")
	}
	switch cfg.Catalog.SynthesisMode {
	case "omit", "seeded":
	default:
		invalid = append(invalid, "Catalog.SynthesisMode")
	}
	if key := cfg.Session.SigningKey; key != "" && len(key) < 16 {
		invalid = append(invalid, "Session.SigningKey")
	}
	if cfg.Session.IdleTTL <= 0 {
		invalid = append(invalid, "Session.IdleTTL")
	}
	if cfg.Session.SweepInterval <= 0 {
		invalid = append(invalid, "Session.SweepInterval")
	}
	if cfg.UI.SearchDebounce < 0 {
		invalid = append(invalid, "UI.SearchDebounce")
	}
	if cfg.Prices.Interval <= 0 {
		invalid = append(invalid, "Prices.Interval")
	}
	if cfg.Prices.Concurrency <= 0 {
		invalid = append(invalid, "Prices.Concurrency")
	}
	return invalid
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
