package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth; empty disables bearer auth on the API.
	APIKey string

	// Checking
	Kinds               []string // brace, paren, bracket
	IncludeTags         bool
	Strategy            string // scan | tokenizer
	MarkdownLanguages   []string
	MaxConcurrentChecks int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Result cache
	CacheSize int
	CacheTTL  time.Duration

	// Per-client rate limit, requests per minute; 0 disables.
	RateLimitPerMin int

	// Logging
	LogLevel  string
	LogFormat string
}

// EnvPrefix namespaces environment overrides, e.g. BRACECHECK_PORT.
const EnvPrefix = "BRACECHECK"

// SetDefaults registers every key with its default so that environment
// variables bind even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")

	v.SetDefault("check.kinds", []string{"brace", "paren"})
	v.SetDefault("check.include_tags", false)
	v.SetDefault("check.strategy", "scan")
	v.SetDefault("check.markdown_languages", []string{})
	v.SetDefault("check.max_concurrent", 8)

	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.max_queue_size", 100)

	v.SetDefault("upload.max_bytes", 10485760) // 10MB
	v.SetDefault("job.ttl", "1h")

	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("rate_limit.per_min", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// New builds a Viper instance with defaults, the optional config file and
// BRACECHECK_* environment overrides applied.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bracecheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from configFile (optional) and the environment.
func Load(configFile string) (Config, error) {
	v, err := New(configFile)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v), nil
}

// FromViper extracts a Config, replacing non-positive sizes with defaults.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		Port:   v.GetString("port"),
		APIKey: v.GetString("api_key"),

		Kinds:               listOf(v, "check.kinds"),
		IncludeTags:         v.GetBool("check.include_tags"),
		Strategy:            v.GetString("check.strategy"),
		MarkdownLanguages:   listOf(v, "check.markdown_languages"),
		MaxConcurrentChecks: v.GetInt("check.max_concurrent"),

		WorkerCount:  v.GetInt("worker.count"),
		MaxQueueSize: v.GetInt("worker.max_queue_size"),

		MaxUploadBytes: v.GetInt64("upload.max_bytes"),
		JobTTL:         v.GetDuration("job.ttl"),

		CacheSize: v.GetInt("cache.size"),
		CacheTTL:  v.GetDuration("cache.ttl"),

		RateLimitPerMin: v.GetInt("rate_limit.per_min"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = []string{"brace", "paren"}
	}
	if cfg.MaxConcurrentChecks <= 0 {
		cfg.MaxConcurrentChecks = 8
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.RateLimitPerMin < 0 {
		cfg.RateLimitPerMin = 0
	}

	return cfg
}

func (c Config) Validate() error {
	for _, k := range c.Kinds {
		switch k {
		case "brace", "paren", "bracket":
		default:
			return fmt.Errorf("check.kinds: unknown kind %q", k)
		}
	}
	switch c.Strategy {
	case "", "scan", "tokenizer":
	default:
		return fmt.Errorf("check.strategy: unknown strategy %q", c.Strategy)
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NewLogger builds the process logger from the logging settings.
func (c Config) NewLogger() *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// listOf accepts both YAML lists and comma-separated environment values.
func listOf(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(strings.ToLower(part)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
