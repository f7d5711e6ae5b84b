package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"dentcheck/internal/config"
	"dentcheck/pkg/logger"
)

var DB *gorm.DB

// InitDB opens the configured database into DB and terminates the process
// when that is not possible.
func InitDB() {
	db, err := Open(config.AppConfig.Database)
	if err != nil {
		logger.LogFatal("Database initialization failed: %v", err)
	}
	DB = db

	logger.LogInfo("Database initialized successfully (%s)", config.AppConfig.Database.Driver)
}

// Open connects, tunes the pool and migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:      gormLogger.Default.LogMode(gormLogger.Silent),
		PrepareStmt: true,
		// writes that need atomicity go through the unit of work
		SkipDefaultTransaction: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, fmt.Errorf("failed to ensure database directory: %w", err)
		}
		// WAL gives concurrent readers; busy_timeout makes writers wait instead of failing.
		dsn := fmt.Sprintf(
			"%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on",
			cfg.Path,
		)
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := configurePool(db, cfg.Driver); err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0750)
	}
	return nil
}

func configurePool(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic database interface: %w", err)
	}

	if driver == "postgres" {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
	} else {
		// SQLite has a single writer; queue in the pool rather than on the file lock.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return nil
}

// Migrate creates or updates every table used by the service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Checkup{}, &ImageRecord{}, &CheckupImage{}); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_checkups_dentist_created ON checkups(dentist_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_checkups_patient_created ON checkups(patient_id, created_at DESC);",
	}

	for _, idx := range indices {
		if err := db.Exec(idx).Error; err != nil {
			logger.LogWarn("Failed to create index: %v", err)
		}
	}
	return nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
