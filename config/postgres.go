package config

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var PostgresDB *gorm.DB

// InitPostgres opens the listing store. POSTGRES_URI is required; the pool
// size follows POSTGRES_MAX_OPEN_CONNS (default 20).
func InitPostgres() error {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return fmt.Errorf("POSTGRES_URI: %w", ErrNotConfigured)
	}
	maxOpen, err := envInt("POSTGRES_MAX_OPEN_CONNS", 20)
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel()),
		// merges run inside an explicit Transaction
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(maxOpen / 2)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	PostgresDB = db
	return nil
}

func gormLogLevel() logger.LogLevel {
	switch os.Getenv("LOG_LEVEL") {
	case "trace":
		return logger.Info
	case "debug", "warn", "warning":
		return logger.Warn
	default:
		return logger.Error
	}
}
