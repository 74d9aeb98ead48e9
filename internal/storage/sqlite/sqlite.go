// Package sqlite stores shortlinks and status checks in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const shortlinkColumns = "id, original_url, short_code, short_url, provider, clicks, created_at"

type Storage struct {
	db *sql.DB
}

// NewStorage opens path (":memory:" is accepted) and creates the schema.
func NewStorage(ctx context.Context, path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite: %w", err)
	}

	// One connection serialises writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error pinging sqlite: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS shortlinks (
		id TEXT PRIMARY KEY,
		original_url TEXT NOT NULL,
		short_code TEXT NOT NULL UNIQUE,
		short_url TEXT,
		provider TEXT NOT NULL,
		clicks INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shortlinks_created_at ON shortlinks(created_at);

	CREATE TABLE IF NOT EXISTS status_checks (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		checked_at TEXT NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

func (s *Storage) FindByCode(ctx context.Context, code string) (model.Shortlink, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+shortlinkColumns+" FROM shortlinks WHERE short_code = ?", code)

	link, err := scanShortlink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Shortlink{}, storage.ErrNotFound
	}
	if err != nil {
		return model.Shortlink{}, fmt.Errorf("error querying shortlink: %w", err)
	}
	return link, nil
}

func (s *Storage) Insert(ctx context.Context, link model.Shortlink) error {
	shortURL := sql.NullString{String: link.ShortURL, Valid: link.ShortURL != ""}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO shortlinks ("+shortlinkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		link.ID, link.OriginalURL, link.ShortCode, shortURL, string(link.Provider), link.Clicks, formatTime(link.CreatedAt),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return storage.ErrCodeExists
		}
		return fmt.Errorf("error inserting shortlink: %w", err)
	}
	return nil
}

func (s *Storage) IncrementClicks(ctx context.Context, code string, delta int64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE shortlinks SET clicks = clicks + ? WHERE short_code = ?", delta, code)
	if err != nil {
		return fmt.Errorf("error incrementing clicks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM shortlinks WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("error deleting shortlink: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) List(ctx context.Context, limit int) ([]model.Shortlink, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+shortlinkColumns+" FROM shortlinks ORDER BY created_at DESC, id ASC LIMIT ?", limit)
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
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO status_checks (id, client_name, checked_at) VALUES (?, ?, ?)",
		check.ID, check.ClientName, formatTime(check.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("error inserting status check: %w", err)
	}
	return nil
}

func (s *Storage) ListStatus(ctx context.Context, limit int) ([]model.StatusCheck, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, client_name, checked_at FROM status_checks ORDER BY checked_at ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("error listing status checks: %w", err)
	}
	defer rows.Close()

	result := make([]model.StatusCheck, 0)
	for rows.Next() {
		var (
			check     model.StatusCheck
			checkedAt string
		)
		if err := rows.Scan(&check.ID, &check.ClientName, &checkedAt); err != nil {
			return nil, fmt.Errorf("error scanning status check: %w", err)
		}
		if check.Timestamp, err = parseTime(checkedAt); err != nil {
			return nil, err
		}
		result = append(result, check)
	}
	return result, rows.Err()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShortlink(row scanner) (model.Shortlink, error) {
	var (
		link      model.Shortlink
		shortURL  sql.NullString
		provider  string
		createdAt string
	)

	if err := row.Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &shortURL, &provider, &link.Clicks, &createdAt); err != nil {
		return model.Shortlink{}, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return model.Shortlink{}, err
	}

	link.ShortURL = shortURL.String
	link.Provider = model.Provider(provider)
	link.CreatedAt = created
	return link, nil
}

// Fixed-width layout so that lexical order in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

var _ storage.Storage = (*Storage)(nil)
