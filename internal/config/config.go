// Package config holds the settings shared by forgescan commands.
//
// Values come from viper (config file, FORGESCAN_* environment variables and
// bound flags) and are resolved once into a Config that is handed to each
// collaborator constructor. Collaborators never read the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by viper.
const EnvPrefix = "FORGESCAN"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the resolved configuration of a forgescan run.
type Config struct {
	PubMed  PubMedConfig
	GitHub  ForgeConfig
	GitLab  ForgeConfig
	SWH     ForgeConfig
	HTTP    HTTPConfig
	Cache   CacheConfig
	Workers int
}

// PubMedConfig configures the NCBI E-utilities client.
type PubMedConfig struct {
	APIKey string
	Email  string
}

// ForgeConfig holds the credentials of a forge or archive API.
type ForgeConfig struct {
	Token string
}

// HTTPConfig configures the shared HTTP client.
type HTTPConfig struct {
	Timeout time.Duration
	Retries int
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend   string
	Dir       string
	RedisAddr string
	TTL       time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pubmed.api_key", "")
	v.SetDefault("pubmed.email", "")
	v.SetDefault("github.token", "")
	v.SetDefault("gitlab.token", "")
	v.SetDefault("swh.token", "")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.retries", 3)
	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("workers", 4)
}

// BindEnv makes nested keys resolvable from FORGESCAN_* variables,
// e.g. FORGESCAN_GITHUB_TOKEN for github.token.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		PubMed: PubMedConfig{
			APIKey: v.GetString("pubmed.api_key"),
			Email:  v.GetString("pubmed.email"),
		},
		GitHub: ForgeConfig{Token: v.GetString("github.token")},
		GitLab: ForgeConfig{Token: v.GetString("gitlab.token")},
		SWH:    ForgeConfig{Token: v.GetString("swh.token")},
		HTTP: HTTPConfig{
			Timeout: v.GetDuration("http.timeout"),
			Retries: v.GetInt("http.retries"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(strings.TrimSpace(v.GetString("cache.backend"))),
			Dir:       v.GetString("cache.dir"),
			RedisAddr: v.GetString("cache.redis_addr"),
			TTL:       v.GetDuration("cache.ttl"),
		},
		Workers: v.GetInt("workers"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", CacheNone, CacheFile, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q (expected %s, %s or %s)", c.Cache.Backend, CacheNone, CacheFile, CacheRedis)
	}

	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required for the file cache backend")
	}

	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis cache backend")
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}

	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries cannot be negative, got %d", c.HTTP.Retries)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	return nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "forgescan")
	}

	return filepath.Join(dir, "forgescan")
}
