package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config drives the storefront CLI. Sources, lowest first: defaults,
// storefront.yaml, STOREFRONT_* environment, flags.
type Config struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	Storage    string        `mapstructure:"storage"` // sqlite | redis | memory
	DBPath     string        `mapstructure:"db_path"`
	RedisURL   string        `mapstructure:"redis_url"`
	RedisTTL   time.Duration `mapstructure:"redis_ttl"`
	Scope      string        `mapstructure:"scope"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Currency   string        `mapstructure:"currency"`
	Verbose    bool          `mapstructure:"verbose"`
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront", "storefront.db")
	}
	return "storefront.db"
}

func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("api_base_url", "http://localhost:5000")
	v.SetDefault("storage", "sqlite")
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("redis_ttl", 30*24*time.Hour)
	v.SetDefault("scope", "default")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("currency", "INR")
	v.SetDefault("verbose", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".storefront"))
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Storage = strings.ToLower(cfg.Storage)
	switch cfg.Storage {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("api_base_url is required")
	}
	return &cfg, nil
}
