package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Load reads configuration from an optional yaml file, the environment and
// built-in defaults, in increasing order of precedence for the environment.
func Load(configFile string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setupViperConfig(v, configFile)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults carry it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && len(configFile) > 0 {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := setupLogging(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}
}

func setupViperConfig(v *viper.Viper, configFile string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix("LEBRELY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.limits.read_timeout", "15s")
	v.SetDefault("server.limits.write_timeout", "15s")
	v.SetDefault("server.limits.idle_timeout", "60s")

	v.SetDefault("database.path", "lebrely.db")

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	// The provider round trip is the dominant latency source and has no
	// built-in bound, so it always carries a timeout.
	v.SetDefault("supabase.timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
