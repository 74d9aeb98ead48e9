package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/MikhailRaia/utility-suite/internal/storage/memory"
	"github.com/rs/zerolog/log"
)

type operation string

const (
	opInsert operation = "insert"
	opClick  operation = "click"
	opDelete operation = "delete"
	opStatus operation = "status"
)

// record is one line of the journal.
type record struct {
	Op        operation          `json:"op"`
	Shortlink *model.Shortlink   `json:"shortlink,omitempty"`
	Status    *model.StatusCheck `json:"status,omitempty"`
	Code      string             `json:"code,omitempty"`
	ID        string             `json:"id,omitempty"`
	Delta     int64              `json:"delta,omitempty"`
}

// Storage keeps an in-memory index and journals every mutation to an
// append-only JSONL file, which is replayed on start.
type Storage struct {
	filePath string
	index    *memory.Storage
	mu       sync.Mutex
	file     *os.File
}

// NewStorage creates a file-backed storage at the provided path.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		index:    memory.NewStorage(),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}
	s.file = f

	return s, nil
}

func (s *Storage) loadFromFile() error {
	f, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	reader := bufio.NewReaderSize(f, 64*1024)

	var offset int64
	line := 0
	for {
		data, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read storage file: %w", readErr)
		}
		if len(data) == 0 {
			return nil
		}
		line++

		torn := !bytes.HasSuffix(data, []byte{'\n'})
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 {
			var rec record
			if err := json.Unmarshal(trimmed, &rec); err != nil {
				if torn {
					return s.dropTornTail(offset, line, err)
				}
				return fmt.Errorf("failed to parse storage line %d: %w", line, err)
			}

			if err := s.apply(ctx, rec); err != nil {
				return fmt.Errorf("failed to replay storage line %d: %w", line, err)
			}
		}

		offset += int64(len(data))
		if torn {
			return s.terminateLastLine()
		}
	}
}

// terminateLastLine adds the newline a complete final record is missing so the
// next append starts on its own line.
func (s *Storage) terminateLastLine() error {
	f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("failed to terminate storage file: %w", err)
	}
	return nil
}

// dropTornTail cuts an unterminated final line left by an interrupted append.
func (s *Storage) dropTornTail(offset int64, line int, cause error) error {
	log.Warn().
		Err(cause).
		Str("path", s.filePath).
		Int("line", line).
		Int64("offset", offset).
		Msg("Dropping torn record at end of storage file")

	if err := os.Truncate(s.filePath, offset); err != nil {
		return fmt.Errorf("failed to truncate torn storage line %d: %w", line, err)
	}
	return nil
}

func (s *Storage) apply(ctx context.Context, rec record) error {
	switch rec.Op {
	case opInsert:
		if rec.Shortlink == nil {
			return fmt.Errorf("insert without shortlink")
		}
		return s.index.Insert(ctx, *rec.Shortlink)
	case opClick:
		return s.index.IncrementClicks(ctx, rec.Code, rec.Delta)
	case opDelete:
		_, err := s.index.DeleteByID(ctx, rec.ID)
		return err
	case opStatus:
		if rec.Status == nil {
			return fmt.Errorf("status without payload")
		}
		return s.index.SaveStatus(ctx, *rec.Status)
	default:
		return fmt.Errorf("unknown operation %q", rec.Op)
	}
}

func (s *Storage) appendRecord(rec record) error {
	if s.file == nil {
		return os.ErrClosed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat storage file: %w", err)
	}

	data = append(data, '\n')
	if _, err := s.file.Write(data); err != nil {
		if terr := s.file.Truncate(info.Size()); terr != nil {
			log.Error().Err(terr).Str("path", s.filePath).Msg("Failed to roll back partial storage write")
		}
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// FindByCode returns the shortlink stored under code.
func (s *Storage) FindByCode(ctx context.Context, code string) (model.Shortlink, error) {
	return s.index.FindByCode(ctx, code)
}

// Insert reserves the code in the index and journals the shortlink. A failed
// write rolls the reservation back.
func (s *Storage) Insert(ctx context.Context, link model.Shortlink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Insert(ctx, link); err != nil {
		return err
	}

	if err := s.appendRecord(record{Op: opInsert, Shortlink: &link}); err != nil {
		_, _ = s.index.DeleteByID(ctx, link.ID)
		return err
	}
	return nil
}

// IncrementClicks adds delta to the click counter of code.
func (s *Storage) IncrementClicks(ctx context.Context, code string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.IncrementClicks(ctx, code, delta); err != nil {
		return err
	}
	if err := s.appendRecord(record{Op: opClick, Code: code, Delta: delta}); err != nil {
		_ = s.index.IncrementClicks(ctx, code, -delta)
		return err
	}
	return nil
}

// DeleteByID removes the shortlink with id and reports whether it existed.
func (s *Storage) DeleteByID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.index.DeleteByID(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	return true, s.appendRecord(record{Op: opDelete, ID: id})
}

// List returns up to limit shortlinks, newest first.
func (s *Storage) List(ctx context.Context, limit int) ([]model.Shortlink, error) {
	return s.index.List(ctx, limit)
}

// SaveStatus journals a status check.
func (s *Storage) SaveStatus(ctx context.Context, check model.StatusCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendRecord(record{Op: opStatus, Status: &check}); err != nil {
		return err
	}
	return s.index.SaveStatus(ctx, check)
}

// ListStatus returns up to limit status checks, oldest first.
func (s *Storage) ListStatus(ctx context.Context, limit int) ([]model.StatusCheck, error) {
	return s.index.ListStatus(ctx, limit)
}

// Ping checks that the journal is still open.
func (s *Storage) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return os.ErrClosed
	}
	_, err := s.file.Stat()
	return err
}

// Close syncs and closes the journal.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Sync()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	s.file = nil
	return err
}

var _ storage.Storage = (*Storage)(nil)
