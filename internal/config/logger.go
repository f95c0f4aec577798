package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

func setupLogging(config *Config) error {
	level, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid logging level %q: %w", config.Logging.Level, err)
	}
	logrus.SetLevel(level)

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		return fmt.Errorf("unsupported logging format: %s", config.Logging.Format)
	}

	return nil
}
