// Package config loads process configuration from environment variables and
// an optional YAML file. The resulting Config is immutable after load and is
// passed explicitly into every component at construction.
package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"

	"mcpdev/internal/domain"
)

type Config struct {
	DatabaseURL string `mapstructure:"databaseURL"`
	RedisURL    string `mapstructure:"redisURL"`
	DataDir     string `mapstructure:"dataDir"`
	ProbeAddr   string `mapstructure:"probeAddr"`
	Debug       bool   `mapstructure:"debug"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	bindEnv(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("databaseURL", domain.DefaultDatabaseURL)
	v.SetDefault("redisURL", domain.DefaultRedisURL)
	v.SetDefault("dataDir", domain.DefaultDataDir)
	v.SetDefault("probeAddr", domain.DefaultProbeListenAddress)
	v.SetDefault("debug", false)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("databaseURL", "DATABASE_URL")
	_ = v.BindEnv("redisURL", "REDIS_URL")
	_ = v.BindEnv("dataDir", "MCPDEV_DATA_DIR")
	_ = v.BindEnv("probeAddr", "MCPDEV_PROBE_ADDR")
	_ = v.BindEnv("debug", "MCPDEV_DEBUG")
}

// Load reads configuration from the environment and, when path is non-empty,
// the YAML file at path. File values override defaults; environment values
// override both.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return domain.E(domain.CodeInvalidArgument, "config", "data dir is required", nil)
	}
	if c.DatabaseURL == "" {
		return domain.E(domain.CodeInvalidArgument, "config", "database url is required", nil)
	}
	if _, err := url.Parse(c.RedisURL); err != nil {
		return domain.E(domain.CodeInvalidArgument, "config", "invalid redis url", err)
	}
	return nil
}
