package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// A single connection serialises writers, which is what makes the
	// play-recording transaction a consistent decision across requests.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// NewWithDB wraps an existing connection without running migrations
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS prizes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0,
			claimed INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK (claimed >= 0 AND claimed <= quantity)
		)`,
		`CREATE TABLE IF NOT EXISTS game_plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			played_at DATETIME NOT NULL,
			play_day TEXT NOT NULL,
			attempt INTEGER NOT NULL CHECK (attempt IN (1, 2)),
			won BOOLEAN NOT NULL DEFAULT 0,
			prize TEXT,
			voucher_code TEXT,
			CHECK ((won = 1 AND prize IS NOT NULL AND voucher_code IS NOT NULL)
				OR (won = 0 AND prize IS NULL AND voucher_code IS NULL)),
			UNIQUE (user_id, play_day, attempt)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_plays_day_won ON game_plays(play_day, won)`,
		`CREATE INDEX IF NOT EXISTS idx_game_plays_user_won ON game_plays(user_id, won)`,
		`CREATE INDEX IF NOT EXISTS idx_game_plays_voucher ON game_plays(voucher_code)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
