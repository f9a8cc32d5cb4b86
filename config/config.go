package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MdEnamulHaque007/UPTOP-sub000/datasync"
	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
)

// envPrefix namespaces environment overrides, e.g. UPTOP_BASE_URL.
const envPrefix = "UPTOP"

// Duration is a time.Duration that reads JSON strings like "30s".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// ServiceConfig configures the remote data service.
type ServiceConfig struct {
	BaseURL        string            `json:"baseUrl"`
	Resources      map[string]string `json:"resources"`
	CacheTTL       Duration          `json:"cacheTtl"`
	RequestTimeout Duration          `json:"requestTimeout"`
	MaxAttempts    int               `json:"maxAttempts"`
	RetryBaseDelay Duration          `json:"retryBaseDelay"`
	RequiredFields []string          `json:"requiredFields"`
}

// DurableBackend names a durable cache implementation.
type DurableBackend string

const (
	DurableNone   DurableBackend = "none"
	DurableFile   DurableBackend = "file"
	DurableRedis  DurableBackend = "redis"
	DurableSQLite DurableBackend = "sqlite"
	DurableNATS   DurableBackend = "nats"
)

// DurableConfig selects and configures the durable cache mirror.
type DurableConfig struct {
	Backend DurableBackend `json:"backend"`

	// Dir is the cache directory for the file backend.
	Dir string `json:"dir,omitempty"`
	// Path is the database file for the sqlite backend.
	Path string `json:"path,omitempty"`

	RedisAddr     string `json:"redisAddr,omitempty"`
	RedisPassword string `json:"redisPassword,omitempty"`
	RedisDB       int    `json:"redisDb,omitempty"`

	NATSURL    string `json:"natsUrl,omitempty"`
	NATSBucket string `json:"natsBucket,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Service ServiceConfig `json:"service"`
	Durable DurableConfig `json:"durable"`

	// PrefsPath is where user preferences are persisted.
	PrefsPath string `json:"prefsPath"`

	// LogLevel is one of debug, info, warn, error. Default info.
	LogLevel string `json:"logLevel"`
}

// Default returns a configuration that passes validation once resources
// are added.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			CacheTTL:       Duration(5 * time.Minute),
			RequestTimeout: Duration(10 * time.Second),
			MaxAttempts:    3,
			RetryBaseDelay: Duration(500 * time.Millisecond),
		},
		Durable:   DurableConfig{Backend: DurableNone},
		PrefsPath: "preferences.json",
		LogLevel:  "info",
	}
}

// Load reads a JSON config file, applies environment overrides, and
// validates the result. An empty path skips the file and builds the
// configuration from defaults and environment alone.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.WrapFatal(err, "config", "Load", "read config file")
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.WrapInvalid(err, "config", "Load", "parse config file")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envPrefix + "_BASE_URL"); v != "" {
		c.Service.BaseURL = v
	}
	if v := os.Getenv(envPrefix + "_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapInvalid(err, "config", "applyEnv", envPrefix+"_CACHE_TTL")
		}
		c.Service.CacheTTL = Duration(d)
	}
	if v := os.Getenv(envPrefix + "_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapInvalid(err, "config", "applyEnv", envPrefix+"_REQUEST_TIMEOUT")
		}
		c.Service.RequestTimeout = Duration(d)
	}
	if v := os.Getenv(envPrefix + "_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.WrapInvalid(err, "config", "applyEnv", envPrefix+"_MAX_ATTEMPTS")
		}
		c.Service.MaxAttempts = n
	}
	if v := os.Getenv(envPrefix + "_DURABLE_BACKEND"); v != "" {
		c.Durable.Backend = DurableBackend(strings.ToLower(v))
	}
	if v := os.Getenv(envPrefix + "_DURABLE_DIR"); v != "" {
		c.Durable.Dir = v
	}
	if v := os.Getenv(envPrefix + "_DURABLE_PATH"); v != "" {
		c.Durable.Path = v
	}
	if v := os.Getenv(envPrefix + "_REDIS_ADDR"); v != "" {
		c.Durable.RedisAddr = v
	}
	if v := os.Getenv(envPrefix + "_REDIS_PASSWORD"); v != "" {
		c.Durable.RedisPassword = v
	}
	if v := os.Getenv(envPrefix + "_NATS_URL"); v != "" {
		c.Durable.NATSURL = v
	}
	if v := os.Getenv(envPrefix + "_NATS_BUCKET"); v != "" {
		c.Durable.NATSBucket = v
	}
	if v := os.Getenv(envPrefix + "_PREFS_PATH"); v != "" {
		c.PrefsPath = v
	}
	if v := os.Getenv(envPrefix + "_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Validate checks the configuration for internal consistency. The
// service config's own Validate runs again at service construction; this
// catches config-file mistakes before anything is built.
func (c *Config) Validate() error {
	if len(c.Service.Resources) == 0 {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"config", "Validate", "no service resources configured")
	}
	switch c.Durable.Backend {
	case DurableNone, "":
	case DurableFile:
		if c.Durable.Dir == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig,
				"config", "Validate", "file durable backend requires dir")
		}
	case DurableSQLite:
		if c.Durable.Path == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig,
				"config", "Validate", "sqlite durable backend requires path")
		}
	case DurableRedis:
		if c.Durable.RedisAddr == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig,
				"config", "Validate", "redis durable backend requires redisAddr")
		}
	case DurableNATS:
		if c.Durable.NATSURL == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig,
				"config", "Validate", "nats durable backend requires natsUrl")
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"config", "Validate", fmt.Sprintf("unknown durable backend %q", c.Durable.Backend))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"config", "Validate", fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	return nil
}

// ServiceOptions converts to the data service's own config type.
func (c *Config) ServiceOptions() datasync.Config {
	return datasync.Config{
		BaseURL:        c.Service.BaseURL,
		Resources:      c.Service.Resources,
		CacheTTL:       c.Service.CacheTTL.Std(),
		RequestTimeout: c.Service.RequestTimeout.Std(),
		MaxAttempts:    c.Service.MaxAttempts,
		RetryBaseDelay: c.Service.RetryBaseDelay.Std(),
		RequiredFields: c.Service.RequiredFields,
	}
}

// OpenDurable constructs the configured durable cache backend. Returns
// (nil, nil) when no backend is configured; the service treats a nil
// durable cache as mirroring disabled.
func (c *Config) OpenDurable(ctx context.Context) (datasync.DurableCache, error) {
	switch c.Durable.Backend {
	case DurableNone, "":
		return nil, nil
	case DurableFile:
		return datasync.NewFileCache(c.Durable.Dir)
	case DurableSQLite:
		return datasync.NewSQLiteCache(ctx, c.Durable.Path)
	case DurableRedis:
		return datasync.NewRedisCache(ctx, datasync.RedisOptions{
			Addr:     c.Durable.RedisAddr,
			Password: c.Durable.RedisPassword,
			DB:       c.Durable.RedisDB,
		})
	case DurableNATS:
		return datasync.NewNATSKVCache(ctx, datasync.NATSKVOptions{
			URL:    c.Durable.NATSURL,
			Bucket: c.Durable.NATSBucket,
		})
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig,
			"config", "OpenDurable", fmt.Sprintf("unknown durable backend %q", c.Durable.Backend))
	}
}
