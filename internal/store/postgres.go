package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store/migrations"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository and shortener.AccessLog.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres migrates the database at databaseURL and connects a pool to it.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if err := migrations.UpPostgres(databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return NewPostgresStore(pool), nil
}

func (p *PostgresStore) Save(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links (code, original_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.OriginalURL,
		link.CreatedAt.Unix(),
		link.ExpiresAt.Unix(),
	)

	return err
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := `
		SELECT code, original_url, created_at, expires_at
		FROM short_links
		WHERE code = $1
	`

	var (
		link                 shortener.ShortLink
		createdAt, expiresAt int64
	)

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&link.Code,
		&link.OriginalURL,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	link.CreatedAt = time.Unix(createdAt, 0)
	link.ExpiresAt = time.Unix(expiresAt, 0)

	return &link, nil
}

func (p *PostgresStore) Append(ctx context.Context, entry *shortener.AccessLogEntry) error {
	query := `
		INSERT INTO access_logs (event_id, code, accessed_at, ip_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		entry.EventID,
		string(entry.Code),
		entry.AccessedAt.Unix(),
		entry.RequesterAddress,
	)

	return err
}

func (p *PostgresStore) ListByCode(ctx context.Context, code shortener.Code) ([]shortener.AccessLogEntry, error) {
	query := `
		SELECT event_id, code, accessed_at, ip_address
		FROM access_logs
		WHERE code = $1
		ORDER BY id
	`

	rows, err := p.pool.Query(ctx, query, string(code))
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
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

var (
	_ shortener.Repository = (*PostgresStore)(nil)
	_ shortener.AccessLog  = (*PostgresStore)(nil)
)
