// Package config loads process configuration from file, environment
// (TABREST_ prefix), and flags via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application-wide configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Query   QueryConfig   `mapstructure:"query"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listenAddr"`
}

type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	ConnString string `mapstructure:"connString"`
	Schema     string `mapstructure:"schema"`
}

type QueryConfig struct {
	DefaultPageSize int      `mapstructure:"defaultPageSize"`
	Blacklist       []string `mapstructure:"blacklist"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listenAddr", ":8080")
	v.SetDefault("db.driver", "duckdb")
	v.SetDefault("db.schema", "main")
	v.SetDefault("query.defaultPageSize", 100)
	v.SetDefault("query.blacklist", []string{})
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9100")
}

// Load reads config from file or environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tabrest")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("TABREST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Environment values arrive as comma-joined strings; entries may carry
	// stray whitespace either way.
	cfg.Query.Blacklist = splitList(strings.Join(cfg.Query.Blacklist, ","))

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
