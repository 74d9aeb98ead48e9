package memory

import (
	"context"
	"sync"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
)

// Storage implements in-memory storage for testing and development.
type Storage struct {
	links    map[string]*model.Shortlink // by short code
	codeByID map[string]string
	statuses []model.StatusCheck
	mutex    sync.RWMutex
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		links:    make(map[string]*model.Shortlink),
		codeByID: make(map[string]string),
	}
}

// FindByCode returns the shortlink stored under code.
func (s *Storage) FindByCode(_ context.Context, code string) (model.Shortlink, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	link, found := s.links[code]
	if !found {
		return model.Shortlink{}, storage.ErrNotFound
	}

	return *link, nil
}

// Insert stores link, reserving its short code.
func (s *Storage) Insert(_ context.Context, link model.Shortlink) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, taken := s.links[link.ShortCode]; taken {
		return storage.ErrCodeExists
	}

	s.links[link.ShortCode] = &link
	s.codeByID[link.ID] = link.ShortCode
	return nil
}

// IncrementClicks adds delta to the click counter of code.
func (s *Storage) IncrementClicks(_ context.Context, code string, delta int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	link, found := s.links[code]
	if !found {
		return storage.ErrNotFound
	}

	link.Clicks += delta
	return nil
}

// DeleteByID removes the shortlink with id and reports whether it existed.
func (s *Storage) DeleteByID(_ context.Context, id string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	code, found := s.codeByID[id]
	if !found {
		return false, nil
	}

	delete(s.codeByID, id)
	delete(s.links, code)
	return true, nil
}

// List returns up to limit shortlinks, newest first.
func (s *Storage) List(_ context.Context, limit int) ([]model.Shortlink, error) {
	s.mutex.RLock()
	result := make([]model.Shortlink, 0, len(s.links))
	for _, link := range s.links {
		result = append(result, *link)
	}
	s.mutex.RUnlock()

	return storage.NewestFirst(result, limit), nil
}

// SaveStatus appends a status check.
func (s *Storage) SaveStatus(_ context.Context, check model.StatusCheck) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.statuses = append(s.statuses, check)
	return nil
}

// ListStatus returns up to limit status checks, oldest first.
func (s *Storage) ListStatus(_ context.Context, limit int) ([]model.StatusCheck, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	n := len(s.statuses)
	if limit > 0 && n > limit {
		n = limit
	}

	result := make([]model.StatusCheck, n)
	copy(result, s.statuses[:n])
	return result, nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}
