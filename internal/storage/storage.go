// Package storage declares the persistence contracts shared by every backend.
package storage

import (
	"context"
	"errors"

	"github.com/MikhailRaia/utility-suite/internal/model"
)

var (
	// ErrNotFound is returned when no record matches a code or id.
	ErrNotFound = errors.New("record not found")
	// ErrCodeExists is returned by Insert when the short code is already taken.
	ErrCodeExists = errors.New("short code already exists")
)

const (
	// ShortlinkListLimit caps shortlink listings.
	ShortlinkListLimit = 100
	// StatusListLimit caps status check listings.
	StatusListLimit = 1000
)

// ShortlinkStorage persists shortlinks. Insert must reserve the short code
// atomically: two concurrent inserts of the same code never both succeed.
type ShortlinkStorage interface {
	FindByCode(ctx context.Context, code string) (model.Shortlink, error)
	Insert(ctx context.Context, link model.Shortlink) error
	IncrementClicks(ctx context.Context, code string, delta int64) error
	DeleteByID(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit int) ([]model.Shortlink, error)
}

// StatusStorage persists status checks.
type StatusStorage interface {
	SaveStatus(ctx context.Context, check model.StatusCheck) error
	ListStatus(ctx context.Context, limit int) ([]model.StatusCheck, error)
}

// Storage is implemented by every backend.
type Storage interface {
	ShortlinkStorage
	StatusStorage
	Ping(ctx context.Context) error
	Close() error
}
