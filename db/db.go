// Package db provides a lightweight GORM-based SQLite wrapper for the vault
// client's local state: submitted deposits and withdrawals.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/r1vault/r1vault/store"
)

const (
	// InMemorySQLiteDSN is a special DSN to create an ephemeral in-memory
	// SQLite database.
	InMemorySQLiteDSN = ":memory:"

	dbDirPermissions = 0o750
)

var (
	// gormConfig disables GORM's own logging; the client logs through
	// zerolog.
	gormConfig = &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	schemaModels = []any{
		&store.VaultTransaction{},
	}
)

// DB wraps a GORM client and provides simplified lifecycle management.
type DB struct {
	client *gorm.DB
}

// OpenFileDB opens (or creates) a file-backed SQLite database in dir,
// migrating the schema when asked.
func OpenFileDB(dir, filename string, migrateSchema bool) (*DB, error) {
	dsn, err := prepareFilePath(dir, filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare database path")
	}
	return openSQLite(dsn, migrateSchema)
}

// OpenInMemoryDB opens a non-persistent SQLite database, useful in tests.
func OpenInMemoryDB(migrateSchema bool) (*DB, error) {
	return openSQLite(InMemorySQLiteDSN, migrateSchema)
}

func openSQLite(dsn string, migrateSchema bool) (*DB, error) {
	if dsn != InMemorySQLiteDSN && !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	client, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	if migrateSchema {
		if err := client.AutoMigrate(schemaModels...); err != nil {
			return nil, errors.Wrap(err, "failed to auto-migrate database schema")
		}
	}

	sqlDB, err := client.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	// SQLite performs best with a single connection in WAL mode.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return &DB{client: client}, nil
}

func prepareFilePath(dir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("database filename is empty")
	}
	if err := os.MkdirAll(dir, dbDirPermissions); err != nil {
		return "", errors.Wrapf(err, "failed to create database directory %s", dir)
	}
	return filepath.Join(dir, filename), nil
}

// Client exposes the underlying GORM handle.
func (d *DB) Client() *gorm.DB {
	return d.client
}

// Close shuts down the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
