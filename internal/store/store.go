// Package store provides the local relational storage layer. Uniqueness of
// email and external id is enforced by unique indexes, not by application
// level locking; callers racing on the same insert let the database pick
// the winner.
package store

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lebrely-io/backend/internal/config"
	"github.com/lebrely-io/backend/internal/models"
)

// Open connects to the sqlite database and runs migrations.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		// Map unique index violations onto gorm.ErrDuplicatedKey so the
		// repository can translate them into the local error taxonomy.
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.Path, err)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	logrus.WithField("path", cfg.Path).Debugln("Database opened")

	return db, nil
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the pooled connections behind the gorm handle.
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Warnln("Failed to close database")
	}
}
