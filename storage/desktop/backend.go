// Package desktop is the storage backend of the desktop build. Every call is
// delegated to the host-provided Bridge.
package desktop

import (
	"context"
	"errors"
	"excaliapp/core"
	"fmt"
)

// Bridge is the function set exposed by the desktop host.
type Bridge interface {
	ListFiles() ([]core.Drawing, error)
	GetFile(id string) (*core.Drawing, error)
	SaveFile(file core.Drawing) error
	DeleteFile(id string) error
}

type backend struct {
	bridge Bridge
}

// NewBackend returns the desktop backend delegating to bridge.
func NewBackend(bridge Bridge) *backend {
	return &backend{bridge: bridge}
}

func (b *backend) ListFiles(ctx context.Context) (map[string]*core.Drawing, error) {
	list, err := b.bridge.ListFiles()
	if err != nil {
		return nil, err
	}

	files := make(map[string]*core.Drawing, len(list))
	for i := range list {
		f := list[i]
		f.InStorage = core.InDesktop
		files[f.ID] = &f
	}
	return files, nil
}

func (b *backend) GetFile(ctx context.Context, id string) (*core.Drawing, error) {
	f, err := b.bridge.GetFile(id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	f.InStorage = core.InDesktop
	return f, nil
}

func (b *backend) SaveFile(ctx context.Context, req core.SaveRequest) (*core.Drawing, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: drawing id is required", core.ErrBadRequest)
	}

	name := req.Name
	if name == "" {
		name = core.DefaultName
	}
	file := core.Drawing{
		ID:        req.ID,
		UserID:    req.UserID,
		Name:      name,
		Data:      req.Data,
		Thumbnail: req.Thumbnail,
		IsPublic:  req.Public(),
	}
	if err := b.bridge.SaveFile(file); err != nil {
		return nil, err
	}

	// the host assigns the timestamps
	saved, err := b.bridge.GetFile(req.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("drawing %s missing after save: %w", req.ID, core.ErrUnknown)
	}
	saved.InStorage = core.InDesktop
	return saved, nil
}

func (b *backend) DeleteFile(ctx context.Context, id string) error {
	return b.bridge.DeleteFile(id)
}

// Available reports whether this binary was built for the desktop runtime.
func (b *backend) Available(ctx context.Context) bool {
	return builtForDesktop
}
