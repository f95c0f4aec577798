package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host           string             `mapstructure:"host"`
	Port           int                `mapstructure:"port"`
	AllowedOrigins []string           `mapstructure:"allowed_origins"`
	Limits         ServerLimitsConfig `mapstructure:"limits"`
}

type ServerLimitsConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	// Path to the sqlite database file. ":memory:" is accepted for
	// throwaway environments.
	Path string `mapstructure:"path"`
}

// SupabaseConfig points at the hosted auth provider. Key can be the anon
// key or the service role key depending on deployment.
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks the settings that have no sensible default.
func (c *Config) Validate() error {
	if len(c.Supabase.URL) == 0 {
		return fmt.Errorf("supabase.url is required")
	}
	if len(c.Supabase.Key) == 0 {
		return fmt.Errorf("supabase.key is required")
	}
	return nil
}
