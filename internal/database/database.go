package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle shared by the repositories and the job queue
type DB struct {
	*gorm.DB
}

// Initialize opens the sqlite database at dbPath, creating parent directories
// for file-backed paths. verbose switches gorm to statement-level logging.
//
// File-backed databases run in WAL mode so status polls can read while a
// pipeline stage persists its result; both modes get foreign keys and a busy
// timeout so concurrent API and worker writes queue instead of erroring.
func Initialize(dbPath string, verbose bool) (*DB, error) {
	inMemory := strings.Contains(dbPath, ":memory:")
	if !inMemory {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
	}

	level := logger.Error
	if verbose {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(connString(dbPath, inMemory)), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// Record timestamps are compared across the API and worker processes
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing connection pool: %w", err)
	}

	if inMemory {
		// Each in-memory connection is a distinct database; pin to one
		pool.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	} else {
		// sqlite serializes writers anyway; a small pool keeps lock
		// contention between the API and the worker pool bounded
		pool.SetMaxOpenConns(4)
		pool.SetMaxIdleConns(2)
		pool.SetConnMaxLifetime(30 * time.Minute)
	}

	return &DB{DB: db}, nil
}

// connString attaches the per-connection sqlite options for file-backed
// databases, so every pooled connection gets them
func connString(dbPath string, inMemory bool) string {
	if inMemory {
		return dbPath
	}
	return fmt.Sprintf("file:%s?_fk=1&_busy_timeout=5000&_journal_mode=WAL", dbPath)
}

// Close releases the underlying connection pool
func (db *DB) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}
	return pool.Close()
}

// HealthCheck pings the database with a short deadline. Safe on a nil
// receiver so the health endpoint can report a server wired without storage.
func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	pool, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// AutoMigrate creates or updates the schema for the given models
func (db *DB) AutoMigrate(models ...any) error {
	if err := db.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	log.Printf("[INFO] Schema migrated for %d model(s)", len(models))
	return nil
}
