// Package storage is the backend-agnostic facade used by the UI layer. It picks
// exactly one backend at construction time and never branches on the mode
// afterwards.
package storage

import (
	"context"
	"excaliapp/core"
	"excaliapp/storage/api"
	"excaliapp/storage/desktop"
	"excaliapp/storage/local"
	"fmt"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Mode selects the storage backend.
type Mode string

const (
	ModeDesktop Mode = "wails"
	ModeBrowser Mode = "browser"
	ModeAPI     Mode = "api"
)

// ParseMode maps a configuration value onto a Mode. Unknown values select the
// API backend, the default of hosted builds.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeDesktop, ModeBrowser:
		return Mode(s)
	default:
		return ModeAPI
	}
}

// Dependencies holds what each backend needs; only the fields of the selected
// mode are used.
type Dependencies struct {
	// Bridge backs ModeDesktop.
	Bridge desktop.Bridge
	// KV backs ModeBrowser.
	KV local.KV
	// APIBaseURL, AuthKey and HTTPClient back ModeAPI.
	APIBaseURL string
	AuthKey    string
	HTTPClient *http.Client
}

type authKeySetter interface {
	SetAuthKey(key string)
}

// Service wraps the active backend.
type Service struct {
	mode    Mode
	backend core.Backend
	newID   func() string
}

// New builds the service for mode.
func New(mode Mode, deps Dependencies) (*Service, error) {
	var backend core.Backend
	switch mode {
	case ModeDesktop:
		if deps.Bridge == nil {
			return nil, fmt.Errorf("storage mode %s requires a desktop bridge", mode)
		}
		backend = desktop.NewBackend(deps.Bridge)
	case ModeBrowser:
		if deps.KV == nil {
			return nil, fmt.Errorf("storage mode %s requires a key-value store", mode)
		}
		backend = local.NewBackend(deps.KV)
	case ModeAPI:
		backend = api.NewBackend(deps.APIBaseURL, deps.AuthKey, deps.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}

	logrus.WithField("mode", mode).Info("Use storage")
	return &Service{mode: mode, backend: backend, newID: newID}, nil
}

func newID() string {
	return ulid.Make().String()
}

// Mode returns the mode the service was built with.
func (s *Service) Mode() Mode {
	return s.mode
}

// Available probes the active backend.
func (s *Service) Available(ctx context.Context) bool {
	return s.backend.Available(ctx)
}

// SetAuthKey updates the credential of the API backend. Other backends ignore it.
func (s *Service) SetAuthKey(key string) {
	if b, ok := s.backend.(authKeySetter); ok {
		b.SetAuthKey(key)
	}
}

func (s *Service) UserFiles(ctx context.Context) (map[string]*core.Drawing, error) {
	return s.backend.ListFiles(ctx)
}

func (s *Service) GetFile(ctx context.Context, id string) (*core.Drawing, error) {
	return s.backend.GetFile(ctx, id)
}

// SaveFile upserts a drawing, generating an id when the request has none.
func (s *Service) SaveFile(ctx context.Context, req core.SaveRequest) (*core.Drawing, error) {
	if req.ID == "" {
		req.ID = s.newID()
	}
	return s.backend.SaveFile(ctx, req)
}

func (s *Service) DeleteFile(ctx context.Context, id string) error {
	return s.backend.DeleteFile(ctx, id)
}

// DuplicateFile saves a copy of a drawing under a fresh id. The copy is named
// "<original> (Copy)" unless newName is set. The read and the write are two
// separate backend calls.
func (s *Service) DuplicateFile(ctx context.Context, id, newName string) (*core.Drawing, error) {
	original, err := s.backend.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}

	name := newName
	if name == "" {
		name = original.Name + " (Copy)"
	}
	return s.SaveFile(ctx, core.SaveRequest{
		UserID:    original.UserID,
		Name:      name,
		Data:      original.Data,
		Thumbnail: original.Thumbnail,
		IsPublic:  core.Bool(original.IsPublic),
	})
}
