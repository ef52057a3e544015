// Package database owns the local SQLite cache. Each entity has its own
// repository subpackage; this package opens the connection, migrates the
// schema and implements the app-wide cache wipe used on sign-out.
package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookclubhq/bookclub/internal/entities"
)

type Database struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewDatabase(dbPath string, log zerolog.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Club{},
		&entities.Member{},
		&entities.ClubMember{},
		&entities.Session{},
		&entities.Discussion{},
		&entities.Book{},
		&entities.Server{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("cache database initialized")

	return &Database{DB: db, log: log.With().Str("component", "database").Logger()}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WipeAll deletes every cached row across all tables. Used by the sign-out
// use-case; runs in one transaction so a half-wiped cache is never left
// behind.
func (d *Database) WipeAll() error {
	tables := []any{
		&entities.ClubMember{},
		&entities.Discussion{},
		&entities.Session{},
		&entities.Member{},
		&entities.Club{},
		&entities.Book{},
		&entities.Server{},
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to wipe cache: %w", err)
	}

	d.log.Info().Msg("local cache wiped")
	return nil
}
