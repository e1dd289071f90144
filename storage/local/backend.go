// Package local keeps every drawing in a single JSON object stored under one
// fixed key of a key-value medium, the way the browser build uses localStorage.
//
// Each operation reads the whole mapping, mutates it and writes it back. There
// is no locking across operations: two writers sharing the same medium race and
// the last write wins.
package local

import (
	"context"
	"encoding/json"
	"excaliapp/core"
	"fmt"

	"github.com/sirupsen/logrus"
)

// StorageKey is the single key holding the id -> drawing mapping.
const StorageKey = "excalidraw_files"

type backend struct {
	kv KV
}

// NewBackend returns the local storage backend on top of kv.
func NewBackend(kv KV) *backend {
	return &backend{kv: kv}
}

func (b *backend) load() (map[string]*core.Drawing, error) {
	raw, ok, err := b.kv.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", StorageKey, err)
	}

	files := make(map[string]*core.Drawing)
	if !ok || raw == "" {
		return files, nil
	}
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", StorageKey, err)
	}
	return files, nil
}

func (b *backend) store(files map[string]*core.Drawing) error {
	for _, f := range files {
		f.InStorage = ""
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", StorageKey, err)
	}
	return b.kv.SetItem(StorageKey, string(raw))
}

func (b *backend) ListFiles(ctx context.Context) (map[string]*core.Drawing, error) {
	files, err := b.load()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		f.InStorage = core.InLocal
	}
	return files, nil
}

func (b *backend) GetFile(ctx context.Context, id string) (*core.Drawing, error) {
	files, err := b.load()
	if err != nil {
		return nil, err
	}
	f, ok := files[id]
	if !ok {
		return nil, nil
	}
	f.InStorage = core.InLocal
	return f, nil
}

func (b *backend) SaveFile(ctx context.Context, req core.SaveRequest) (*core.Drawing, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: drawing id is required", core.ErrBadRequest)
	}

	files, err := b.load()
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = core.DefaultName
	}
	drawing := &core.Drawing{
		ID:        req.ID,
		UserID:    req.UserID,
		Name:      name,
		Data:      req.Data,
		Thumbnail: req.Thumbnail,
		IsPublic:  req.Public(),
	}

	if existing, ok := files[req.ID]; ok {
		drawing.CreatedAt = existing.CreatedAt
		drawing.UpdatedAt = core.Touch(existing.UpdatedAt)
	} else {
		drawing.UpdatedAt = core.Touch(drawing.UpdatedAt)
		drawing.CreatedAt = drawing.UpdatedAt
	}

	files[drawing.ID] = drawing
	if err := b.store(files); err != nil {
		return nil, err
	}

	logrus.WithField("drawing_id", drawing.ID).Debug("Drawing saved to local storage")
	drawing.InStorage = core.InLocal
	return drawing, nil
}

func (b *backend) DeleteFile(ctx context.Context, id string) error {
	files, err := b.load()
	if err != nil {
		return err
	}
	if _, ok := files[id]; !ok {
		return fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}

	delete(files, id)
	return b.store(files)
}

func (b *backend) Available(ctx context.Context) bool {
	return true
}
