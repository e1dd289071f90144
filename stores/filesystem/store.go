package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"excaliapp/core"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// fsStore keeps one JSON file per drawing, named by id. Writes go through a
// temporary file and a rename so readers never see a partial drawing.
type fsStore struct {
	mu       sync.Mutex
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: invalid drawing id %q", core.ErrBadRequest, id)
	}
	return filepath.Join(s.basePath, id+".json"), nil
}

func (s *fsStore) read(filePath string) (*core.Drawing, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	var d core.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}
	return &d, nil
}

func (s *fsStore) write(d *core.Drawing) error {
	filePath, err := s.path(d.ID)
	if err != nil {
		return err
	}
	stored := *d
	stored.InStorage = ""
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

func (s *fsStore) List(ctx context.Context, userID string) ([]*core.Drawing, error) {
	log := logrus.WithField("user_id", userID).WithField("path", s.basePath)

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		log.WithError(err).Error("Failed to read storage directory")
		return nil, err
	}

	drawings := make([]*core.Drawing, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		d, err := s.read(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read drawing file %s, skipping", entry.Name())
			continue
		}
		if d.UserID == userID {
			drawings = append(drawings, d)
		}
	}
	return drawings, nil
}

func (s *fsStore) Lookup(ctx context.Context, id string) (*core.Drawing, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}
	d, err := s.read(filePath)
	if err != nil {
		return nil, fmt.Errorf("drawing %s: %w", id, err)
	}
	return d, nil
}

func (s *fsStore) Get(ctx context.Context, userID, id string) (*core.Drawing, error) {
	d, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	return d, nil
}

func (s *fsStore) Create(ctx context.Context, d *core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.UserID == "" {
		return errors.New("drawing user id is required")
	}
	_, err := s.Lookup(ctx, d.ID)
	if err == nil {
		return fmt.Errorf("drawing %s already exists", d.ID)
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	if err := s.write(d); err != nil {
		logrus.WithError(err).WithField("drawing_id", d.ID).Error("Failed to create drawing")
		return err
	}
	return nil
}

func (s *fsStore) Update(ctx context.Context, d *core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Get(ctx, d.UserID, d.ID)
	if err != nil {
		return err
	}
	existing.Name = d.Name
	existing.Data = d.Data
	existing.Thumbnail = d.Thumbnail
	existing.IsPublic = d.IsPublic
	existing.UpdatedAt = d.UpdatedAt
	return s.write(existing)
}

func (s *fsStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	filePath, _ := s.path(id)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, err)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "drawing_id": id}).Debug("Drawing deleted")
	return nil
}
