package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore is a SQL-backed session store.
// It works with any database/sql compatible driver (PostgreSQL, MySQL,
// SQLite). Requires a table with the Schema for the chosen dialect.
type SQLStore struct {
	db              *sql.DB
	tableName       string
	dialect         Dialect
	cleanupInterval time.Duration
	closed          bool
	done            chan struct{}
}

// Dialect represents the SQL dialect for query generation.
type Dialect int

const (
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL Dialect = iota
	// DialectMySQL uses MySQL syntax (? placeholders).
	DialectMySQL
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite
)

// SQLStoreOption configures SQLStore behavior.
type SQLStoreOption func(*sqlStoreConfig)

type sqlStoreConfig struct {
	tableName       string
	dialect         Dialect
	cleanupInterval time.Duration
}

// WithTableName sets the table name for session storage.
// Default: "addrnav_sessions".
func WithTableName(name string) SQLStoreOption {
	return func(c *sqlStoreConfig) {
		c.tableName = name
	}
}

// WithDialect sets the SQL dialect for query generation.
// Default: DialectPostgreSQL.
func WithDialect(d Dialect) SQLStoreOption {
	return func(c *sqlStoreConfig) {
		c.dialect = d
	}
}

// WithSQLCleanupInterval sets how often expired sessions are swept.
// Default: 5 minutes.
func WithSQLCleanupInterval(d time.Duration) SQLStoreOption {
	return func(c *sqlStoreConfig) {
		c.cleanupInterval = d
	}
}

// NewSQLStore creates a new SQL-backed session store.
func NewSQLStore(db *sql.DB, opts ...SQLStoreOption) *SQLStore {
	cfg := &sqlStoreConfig{
		tableName:       "addrnav_sessions",
		dialect:         DialectPostgreSQL,
		cleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := &SQLStore{
		db:              db,
		tableName:       cfg.tableName,
		dialect:         cfg.dialect,
		cleanupInterval: cfg.cleanupInterval,
		done:            make(chan struct{}),
	}

	go store.cleanupLoop()
	return store
}

// Schema returns the CREATE TABLE statement for the given dialect and
// table name. Run it once during deployment.
func Schema(dialect Dialect, tableName string) string {
	switch dialect {
	case DialectMySQL:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(64) PRIMARY KEY,
	username VARCHAR(255) NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	INDEX idx_%s_expires (expires_at)
)`, tableName, tableName)
	case DialectSQLite:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP NOT NULL
)`, tableName)
	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(64) PRIMARY KEY,
	username VARCHAR(255) NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%s_expires ON %s (expires_at)`, tableName, tableName, tableName)
	}
}

// Save persists a record, overwriting any record with the same ID.
func (s *SQLStore) Save(ctx context.Context, rec Record) error {
	if s.closed {
		return ErrStoreClosed
	}

	var query string
	switch s.dialect {
	case DialectMySQL:
		query = fmt.Sprintf(`INSERT INTO %s (id, username, is_admin, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				username = VALUES(username),
				is_admin = VALUES(is_admin),
				expires_at = VALUES(expires_at)`, s.tableName)
	case DialectSQLite:
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, username, is_admin, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?)`, s.tableName)
	default:
		query = fmt.Sprintf(`INSERT INTO %s (id, username, is_admin, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				username = EXCLUDED.username,
				is_admin = EXCLUDED.is_admin,
				expires_at = EXCLUDED.expires_at`, s.tableName)
	}

	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.User, rec.Admin, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Load retrieves a record if it exists and hasn't expired.
func (s *SQLStore) Load(ctx context.Context, id string) (*Record, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}

	query := fmt.Sprintf(`SELECT id, username, is_admin, created_at, expires_at FROM %s WHERE id = %s`,
		s.tableName, s.placeholder(1))

	var rec Record
	err := s.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.User, &rec.Admin, &rec.CreatedAt, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if rec.Expired(time.Now()) {
		return nil, nil
	}
	return &rec, nil
}

// Delete removes a record.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if s.closed {
		return ErrStoreClosed
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, s.tableName, s.placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// Touch extends a record's deadline.
func (s *SQLStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	if s.closed {
		return ErrStoreClosed
	}

	query := fmt.Sprintf(`UPDATE %s SET expires_at = %s WHERE id = %s`,
		s.tableName, s.placeholder(1), s.placeholder(2))
	if _, err := s.db.ExecContext(ctx, query, expiresAt, id); err != nil {
		return fmt.Errorf("session: touch: %w", err)
	}
	return nil
}

// Close stops the sweeper. The *sql.DB is owned by the caller and is
// not closed here.
func (s *SQLStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}

// placeholder returns the placeholder syntax for the dialect.
func (s *SQLStore) placeholder(n int) string {
	if s.dialect == DialectPostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// cleanupLoop periodically removes expired rows.
func (s *SQLStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < %s`, s.tableName, s.placeholder(1))
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			s.db.ExecContext(ctx, query, time.Now())
			cancel()
		}
	}
}
