package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"github.com/so-sentiment/analyzer/database/data_model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrEmptyURI = errors.New("empty database URI")

// dialectorFor picks gorm dialector by URI scheme. URI without scheme is
// treated as SQLite file path.
func dialectorFor(uri string) (gorm.Dialector, error) {
	switch {
	case uri == "":
		return nil, ErrEmptyURI
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return postgres.Open(uri), nil
	case strings.HasPrefix(uri, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(uri, "sqlite://")), nil
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("unsupported database URI %q", uri)
	default:
		return sqlite.Open(uri), nil
	}
}

// Open connects to database at given URI and makes sure all tables exist.
func Open(uri string) (*gorm.DB, error) {
	dialector, err := dialectorFor(uri)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %s", uri, err)
	}

	if err = Setup(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	inner, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to close database, can't read inner data: %s", err)
	}

	err = inner.Close()
	if err != nil {
		return fmt.Errorf("failed to close inner database: %s", err)
	}

	return nil
}

// Setup creates tables that are missing.
func Setup(db *gorm.DB) error {
	err := db.AutoMigrate(
		&data_model.Post{},
		&data_model.Comment{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %s", err)
	}

	return nil
}

// Teardown drops all tables.
func Teardown(db *gorm.DB) error {
	err := db.Migrator().DropTable(
		&data_model.Comment{},
		&data_model.Post{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %s", err)
	}

	return nil
}

// BatchCommit inserts all models in a single transaction. On failure the
// transaction is rolled back and false is returned.
func BatchCommit[T any](db *gorm.DB, models []T) bool {
	if len(models) == 0 {
		return true
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models).Error
	})
	if err != nil {
		log.Errorf("batch commit of %d records failed, rolling back: %s", len(models), err)
		return false
	}

	return true
}

// CommitAllSeparately inserts models one at a time, skipping those that fail.
// Returns number of models committed.
func CommitAllSeparately[T any](db *gorm.DB, models []T) int {
	count := 0
	for i := range models {
		err := db.Create(models[i]).Error
		if err != nil {
			log.Errorf("failed to commit record, skipped: %s", err)
			continue
		}
		count++
	}

	return count
}
