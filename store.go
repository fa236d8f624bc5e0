package curio

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store wraps the Postgres pool. All content, user, message, comment and
// gallery persistence goes through it; the listing component receives the
// same pool via its Queryer interface.
type Store struct {
	db *sqlx.DB
}

// NewStore opens the Postgres pool, verifies connectivity and ensures the
// schema exists.
func NewStore(cfg DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// newStoreFromDB wraps an existing pool; used by tests with sqlmock.
func newStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the pool for the listing component.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// contentColumns is the shared column subset every content table carries.
// search_ti is a stored tsvector over title and body for full-text search.
const contentColumns = `
    user_id BIGINT NOT NULL,
    user_name TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    html TEXT NOT NULL DEFAULT '',
    brief TEXT,
    brief_html TEXT,
    tags TEXT,
    url TEXT,
    i_public SMALLINT NOT NULL DEFAULT 0,
    i_type SMALLINT NOT NULL DEFAULT 0,
    i_category SMALLINT NOT NULL DEFAULT 0,
    i_good SMALLINT NOT NULL DEFAULT 0,
    good SMALLINT NOT NULL DEFAULT 0,
    good_at TIMESTAMPTZ,
    click BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ,
    search_ti tsvector GENERATED ALWAYS AS (to_tsvector('simple', title || ' ' || body)) STORED`

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
    user_id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    i_role SMALLINT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE TABLE IF NOT EXISTS article (
    article_id BIGSERIAL PRIMARY KEY,` + contentColumns + `
)`,
		`CREATE TABLE IF NOT EXISTS note (
    note_id BIGSERIAL PRIMARY KEY,` + contentColumns + `
)`,
		`CREATE TABLE IF NOT EXISTS book (
    book_id BIGSERIAL PRIMARY KEY,
    author TEXT,
    press TEXT,
    file TEXT,` + contentColumns + `
)`,
		`CREATE INDEX IF NOT EXISTS article_search_idx ON article USING GIN (search_ti)`,
		`CREATE INDEX IF NOT EXISTS note_search_idx ON note USING GIN (search_ti)`,
		`CREATE INDEX IF NOT EXISTS book_search_idx ON book USING GIN (search_ti)`,
		`CREATE TABLE IF NOT EXISTS gallery_image (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    title TEXT NOT NULL,
    brief TEXT,
    tags TEXT,
    file TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ
)`,
		`CREATE TABLE IF NOT EXISTS message (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    user_name TEXT NOT NULL,
    to_user_id BIGINT NOT NULL,
    to_user_name TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    html TEXT NOT NULL DEFAULT '',
    i_status SMALLINT NOT NULL DEFAULT 0,
    in_public SMALLINT NOT NULL DEFAULT 1,
    out_public SMALLINT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE TABLE IF NOT EXISTS comment (
    id BIGSERIAL PRIMARY KEY,
    target_kind TEXT NOT NULL,
    target_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    user_name TEXT NOT NULL,
    body TEXT NOT NULL,
    html TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS comment_target_idx ON comment (target_kind, target_id)`,
		`CREATE TABLE IF NOT EXISTS reset_pw_req (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    user_name TEXT NOT NULL,
    user_email TEXT NOT NULL,
    i_status SMALLINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
