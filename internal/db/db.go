package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/spark-core/internal/config"
)

// NewDB initializes the database connection using the driver and DSN from config.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DB.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.DSN)
	default:
		dialector = mysql.Open(cfg.DB.DSN)
	}

	level := logger.Warn
	if cfg.Log.Level == "debug" {
		level = logger.Info // log SQL queries
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if cfg.DB.Driver == "sqlite" {
		// sqlite has a single writer; one connection turns lock contention into queueing
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// Migrate ensures schema is in sync with models.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
