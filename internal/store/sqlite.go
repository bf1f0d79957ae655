package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store/migrations"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore is an embedded SQLite implementation of shortener.Repository and shortener.AccessLog.
type SQLiteStore struct {
	db *sql.DB
}

// sqliteDSN sets the pragmas on the connection string so that every connection
// the pool opens gets them, not only the first.
func sqliteDSN(path string) string {
	query := url.Values{}
	query.Add("_pragma", "busy_timeout(5000)")
	query.Add("_pragma", "journal_mode(WAL)")

	return "file:" + path + "?" + query.Encode()
}

// OpenSQLite opens (or creates) the database file at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY between our own conns.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err = migrations.UpSQLite(db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links (code, original_url, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		string(link.Code),
		link.OriginalURL,
		link.CreatedAt.Unix(),
		link.ExpiresAt.Unix(),
	)

	return err
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := `
		SELECT code, original_url, created_at, expires_at
		FROM short_links
		WHERE code = ?
	`

	var (
		link                 shortener.ShortLink
		createdAt, expiresAt int64
	)

	err := s.db.QueryRowContext(ctx, query, string(code)).Scan(
		&link.Code,
		&link.OriginalURL,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	link.CreatedAt = time.Unix(createdAt, 0)
	link.ExpiresAt = time.Unix(expiresAt, 0)

	return &link, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry *shortener.AccessLogEntry) error {
	query := `
		INSERT INTO access_logs (event_id, code, accessed_at, ip_address)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.EventID,
		string(entry.Code),
		entry.AccessedAt.Unix(),
		entry.RequesterAddress,
	)

	return err
}

func (s *SQLiteStore) ListByCode(ctx context.Context, code shortener.Code) ([]shortener.AccessLogEntry, error) {
	query := `
		SELECT event_id, code, accessed_at, ip_address
		FROM access_logs
		WHERE code = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, string(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]shortener.AccessLogEntry, 0)

	for rows.Next() {
		var (
			entry      shortener.AccessLogEntry
			accessedAt int64
		)

		if err = rows.Scan(&entry.EventID, &entry.Code, &accessedAt, &entry.RequesterAddress); err != nil {
			return nil, err
		}

		entry.AccessedAt = time.Unix(accessedAt, 0)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

var (
	_ shortener.Repository = (*SQLiteStore)(nil)
	_ shortener.AccessLog  = (*SQLiteStore)(nil)
)
