package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const shortCodeIndex = "idx_shortlinks_short_code"

const shortlinkColumns = "id, original_url, short_code, short_url, provider, clicks, created_at"

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	s := &Storage{
		pool: pool,
	}

	if err := s.createTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS shortlinks (
			id TEXT PRIMARY KEY,
			original_url TEXT NOT NULL,
			short_code VARCHAR(32) NOT NULL,
			short_url TEXT,
			provider VARCHAR(16) NOT NULL,
			clicks BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + shortCodeIndex + ` ON shortlinks(short_code)`,
		`CREATE INDEX IF NOT EXISTS idx_shortlinks_created_at ON shortlinks(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS status_checks (
			id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			checked_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}

func (s *Storage) FindByCode(ctx context.Context, code string) (model.Shortlink, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+shortlinkColumns+" FROM shortlinks WHERE short_code = $1", code)

	link, err := scanShortlink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Shortlink{}, storage.ErrNotFound
		}
		return model.Shortlink{}, fmt.Errorf("error querying shortlink: %w", err)
	}

	return link, nil
}

// Insert relies on the unique index over short_code to reserve the code.
func (s *Storage) Insert(ctx context.Context, link model.Shortlink) error {
	var shortURL *string
	if link.ShortURL != "" {
		shortURL = &link.ShortURL
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO shortlinks ("+shortlinkColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		link.ID, link.OriginalURL, link.ShortCode, shortURL, string(link.Provider), link.Clicks, link.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == shortCodeIndex {
			return storage.ErrCodeExists
		}
		return fmt.Errorf("error inserting shortlink: %w", err)
	}

	return nil
}

func (s *Storage) IncrementClicks(ctx context.Context, code string, delta int64) error {
	tag, err := s.pool.Exec(ctx, "UPDATE shortlinks SET clicks = clicks + $2 WHERE short_code = $1", code, delta)
	if err != nil {
		return fmt.Errorf("error incrementing clicks: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM shortlinks WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("error deleting shortlink: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Storage) List(ctx context.Context, limit int) ([]model.Shortlink, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+shortlinkColumns+" FROM shortlinks ORDER BY created_at DESC, id ASC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("error listing shortlinks: %w", err)
	}
	defer rows.Close()

	result := make([]model.Shortlink, 0)
	for rows.Next() {
		link, err := scanShortlink(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning shortlink: %w", err)
		}
		result = append(result, link)
	}

	return result, rows.Err()
}

func (s *Storage) SaveStatus(ctx context.Context, check model.StatusCheck) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO status_checks (id, client_name, checked_at) VALUES ($1, $2, $3)",
		check.ID, check.ClientName, check.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error inserting status check: %w", err)
	}
	return nil
}

func (s *Storage) ListStatus(ctx context.Context, limit int) ([]model.StatusCheck, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, client_name, checked_at FROM status_checks ORDER BY checked_at ASC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("error listing status checks: %w", err)
	}
	defer rows.Close()

	result := make([]model.StatusCheck, 0)
	for rows.Next() {
		var check model.StatusCheck
		if err := rows.Scan(&check.ID, &check.ClientName, &check.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning status check: %w", err)
		}
		check.Timestamp = check.Timestamp.UTC()
		result = append(result, check)
	}

	return result, rows.Err()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func scanShortlink(row pgx.Row) (model.Shortlink, error) {
	var (
		link     model.Shortlink
		shortURL *string
		provider string
	)

	err := row.Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &shortURL, &provider, &link.Clicks, &link.CreatedAt)
	if err != nil {
		return model.Shortlink{}, err
	}

	if shortURL != nil {
		link.ShortURL = *shortURL
	}
	link.Provider = model.Provider(provider)
	link.CreatedAt = link.CreatedAt.UTC()

	return link, nil
}

var _ storage.Storage = (*Storage)(nil)
