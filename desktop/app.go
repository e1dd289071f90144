// Package desktop hosts the drawing files of the desktop build. The App struct
// is bound into the Wails runtime so the frontend can call ListFiles, GetFile,
// SaveFile and DeleteFile directly.
package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"excaliapp/core"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	metaSuffix = ".i.json"
	dataSuffix = ".excalidraw"

	// FilesChangedEvent is emitted to the frontend when drawings change on disk.
	FilesChangedEvent = "files:changed"
)

// App struct
type App struct {
	ctx     context.Context
	dir     string
	emit    func(event string, data ...any)
	watcher *watcher
}

// UserDataDir returns the directory drawings are kept in.
func UserDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		var err error
		base, err = os.UserConfigDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(base, "excaliapp"), nil
}

// NewApp creates a new App storing drawings under dir.
func NewApp(dir string) (*App, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	a := &App{dir: dir}
	a.emit = func(event string, data ...any) {
		if a.ctx != nil {
			runtime.EventsEmit(a.ctx, event, data...)
		}
	}
	return a, nil
}

// Dir returns the storage directory.
func (a *App) Dir() string {
	return a.dir
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	w, err := watchDir(a.dir, func(id string) {
		a.emit(FilesChangedEvent, id)
	})
	if err != nil {
		logrus.WithError(err).Warn("Not watching storage directory")
		return
	}
	a.watcher = w
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Close()
	}
}

func (a *App) paths(id string) (meta, data string, err error) {
	if id == "" || id == "." || id == ".." || path.Base(id) != id || strings.ContainsAny(id, `/\`) {
		return "", "", fmt.Errorf("%w: invalid drawing id %q", core.ErrBadRequest, id)
	}
	return filepath.Join(a.dir, id+metaSuffix), filepath.Join(a.dir, id+dataSuffix), nil
}

func (a *App) readMeta(metaPath string) (*core.Drawing, error) {
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	d := &core.Drawing{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(metaPath), err)
	}
	return d, nil
}

// ListFiles returns the metadata of every drawing. Payloads are not loaded.
func (a *App) ListFiles() ([]core.Drawing, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	files := make([]core.Drawing, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metaSuffix) {
			continue
		}
		d, err := a.readMeta(filepath.Join(a.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, *d)
	}
	return files, nil
}

// GetFile returns a drawing with its payload.
func (a *App) GetFile(id string) (*core.Drawing, error) {
	metaPath, dataPath, err := a.paths(id)
	if err != nil {
		return nil, err
	}

	d, err := a.readMeta(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(dataPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read data file %s: %w", id, err)
	}
	d.Data = string(content)
	return d, nil
}

// SaveFile writes the payload and metadata of a drawing, keeping the creation
// time of an existing one.
func (a *App) SaveFile(file core.Drawing) error {
	metaPath, dataPath, err := a.paths(file.ID)
	if err != nil {
		return err
	}

	existing, err := a.readMeta(metaPath)
	if err == nil {
		file.CreatedAt = existing.CreatedAt
		file.UpdatedAt = core.Touch(existing.UpdatedAt)
	} else {
		file.UpdatedAt = core.Touch(file.UpdatedAt)
		file.CreatedAt = file.UpdatedAt
	}

	if err := os.WriteFile(dataPath, []byte(file.Data), 0644); err != nil {
		return fmt.Errorf("failed to write data file %s: %w", file.ID, err)
	}

	file.Data = ""
	file.InStorage = ""
	meta, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing: %w", err)
	}
	if err := os.WriteFile(metaPath, meta, 0644); err != nil {
		return fmt.Errorf("failed to write drawing %s: %w", file.ID, err)
	}
	return nil
}

// DeleteFile removes both files of a drawing.
func (a *App) DeleteFile(id string) error {
	metaPath, dataPath, err := a.paths(id)
	if err != nil {
		return err
	}

	if err := os.Remove(metaPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("drawing %s: %w", id, core.ErrNotFound)
		}
		return fmt.Errorf("failed to delete drawing %s: %w", id, err)
	}
	if err := os.Remove(dataPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete data file %s: %w", id, err)
	}
	return nil
}
