package memory

import (
	"context"
	"excaliapp/core"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// memStore keeps drawings keyed by id. Ownership is checked on every access.
type memStore struct {
	mu       sync.RWMutex
	drawings map[string]core.Drawing
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{drawings: make(map[string]core.Drawing)}
}

func (s *memStore) List(ctx context.Context, userID string) ([]*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drawings := make([]*core.Drawing, 0)
	for _, d := range s.drawings {
		if d.UserID != userID {
			continue
		}
		d := d
		drawings = append(drawings, &d)
	}

	logrus.WithField("user_id", userID).Debugf("Listed %d drawings", len(drawings))
	return drawings, nil
}

func (s *memStore) Get(ctx context.Context, userID, id string) (*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drawings[id]
	if !ok || d.UserID != userID {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	return &d, nil
}

func (s *memStore) Lookup(ctx context.Context, id string) (*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drawings[id]
	if !ok {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	return &d, nil
}

func (s *memStore) Create(ctx context.Context, drawing *core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if drawing.ID == "" || drawing.UserID == "" {
		return fmt.Errorf("drawing id and user id are required")
	}
	if _, exists := s.drawings[drawing.ID]; exists {
		return fmt.Errorf("drawing %s already exists", drawing.ID)
	}

	d := *drawing
	d.InStorage = ""
	s.drawings[d.ID] = d
	logrus.WithFields(logrus.Fields{"user_id": d.UserID, "drawing_id": d.ID}).Debug("Drawing created")
	return nil
}

func (s *memStore) Update(ctx context.Context, drawing *core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.drawings[drawing.ID]
	if !ok || existing.UserID != drawing.UserID {
		return fmt.Errorf("drawing %s: %w", drawing.ID, core.ErrNotFound)
	}

	existing.Name = drawing.Name
	existing.Data = drawing.Data
	existing.Thumbnail = drawing.Thumbnail
	existing.IsPublic = drawing.IsPublic
	existing.UpdatedAt = drawing.UpdatedAt
	s.drawings[drawing.ID] = existing
	logrus.WithFields(logrus.Fields{"user_id": drawing.UserID, "drawing_id": drawing.ID}).Debug("Drawing updated")
	return nil
}

func (s *memStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drawings[id]
	if !ok || d.UserID != userID {
		return fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	delete(s.drawings, id)
	logrus.WithFields(logrus.Fields{"user_id": userID, "drawing_id": id}).Debug("Drawing deleted")
	return nil
}
