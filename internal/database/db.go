package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrTableMissing reports that a query hit a table the migrations have not
// created yet. Handlers map this to a maintenance response.
var ErrTableMissing = errors.New("database table does not exist")

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        "videa",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DB wraps the sql.DB connection
type DB struct {
	*sql.DB
	config Config
}

// New creates a new database connection
func New(config Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, config: config}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate runs database migrations
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationVideoIdeas,
		migrationVideoIdeasIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// isUndefinedTable reports whether err is Postgres error 42P01
// (undefined_table).
func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}

// Migration SQL statements
const migrationVideoIdeas = `
CREATE TABLE IF NOT EXISTS video_ideas (
    id VARCHAR(64) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL,
    title TEXT NOT NULL,
    concept TEXT NOT NULL,
    hashtags JSONB NOT NULL DEFAULT '[]',
    virality_score INTEGER NOT NULL DEFAULT 0,
    virality_justification TEXT NOT NULL DEFAULT '',
    monetization_strategy TEXT NOT NULL DEFAULT '',
    video_format JSONB NOT NULL DEFAULT '{}',
    platform VARCHAR(64) NOT NULL DEFAULT '',
    content_type VARCHAR(64) NOT NULL DEFAULT '',
    trend_analysis JSONB NOT NULL DEFAULT '{}',
    region VARCHAR(16) NOT NULL DEFAULT 'US',
    channel_inspirations TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const migrationVideoIdeasIndexes = `
CREATE INDEX IF NOT EXISTS idx_video_ideas_user_id ON video_ideas(user_id);
CREATE INDEX IF NOT EXISTS idx_video_ideas_created_at ON video_ideas(created_at DESC)`
