package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MikhailRaia/utility-suite/internal/generator"
	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/storage"
)

// StatusService records client check-ins.
type StatusService struct {
	store storage.StatusStorage
	now   func() time.Time
}

func NewStatusService(store storage.StatusStorage) *StatusService {
	return &StatusService{store: store, now: time.Now}
}

// Create stores a check-in for clientName.
func (s *StatusService) Create(ctx context.Context, clientName string) (model.StatusCheck, error) {
	name := strings.TrimSpace(clientName)
	if name == "" {
		return model.StatusCheck{}, fmt.Errorf("%w: client_name is required", ErrInvalidRequest)
	}

	check := model.StatusCheck{
		ID:         generator.NewID(),
		ClientName: name,
		Timestamp:  s.now().UTC(),
	}
	if err := s.store.SaveStatus(ctx, check); err != nil {
		return model.StatusCheck{}, fmt.Errorf("error saving status check: %w", err)
	}
	return check, nil
}

// List returns stored check-ins, oldest first.
func (s *StatusService) List(ctx context.Context) ([]model.StatusCheck, error) {
	checks, err := s.store.ListStatus(ctx, storage.StatusListLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing status checks: %w", err)
	}
	return checks, nil
}
