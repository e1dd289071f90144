package desktop

import (
	"context"
	"errors"
	"excaliapp/core"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(filepath.Join(t.TempDir(), "excaliapp"))
	if err != nil {
		t.Fatalf("NewApp() failed: %v", err)
	}
	return app
}

func TestNewApp_CreatesDirectory(t *testing.T) {
	app := newTestApp(t)
	if _, err := os.Stat(app.Dir()); err != nil {
		t.Errorf("storage directory not created: %v", err)
	}
}

func TestSaveAndGetFile(t *testing.T) {
	app := newTestApp(t)

	err := app.SaveFile(core.Drawing{ID: "f1", UserID: "u1", Name: "Sketch", Data: `{"elements":[]}`, Thumbnail: "png"})
	if err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}

	got, err := app.GetFile("f1")
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.Name != "Sketch" || got.Data != `{"elements":[]}` || got.Thumbnail != "png" {
		t.Errorf("GetFile() = %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("new drawing timestamps: created %v, updated %v", got.CreatedAt, got.UpdatedAt)
	}

	// payload lives in its own file, not in the metadata
	meta, err := os.ReadFile(filepath.Join(app.Dir(), "f1"+metaSuffix))
	if err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}
	if strings.Contains(string(meta), "elements") {
		t.Errorf("metadata contains the payload: %s", meta)
	}
}

func TestSaveFile_PreservesCreatedAt(t *testing.T) {
	app := newTestApp(t)

	if err := app.SaveFile(core.Drawing{ID: "f1", Data: "1"}); err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}
	first, _ := app.GetFile("f1")

	if err := app.SaveFile(core.Drawing{ID: "f1", Data: "2"}); err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}
	second, _ := app.GetFile("f1")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
	if second.Data != "2" {
		t.Errorf("Data = %q, want 2", second.Data)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	app := newTestApp(t)

	_, err := app.GetFile("missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetFile() error = %v, want ErrNotFound", err)
	}
}

func TestInvalidIDs(t *testing.T) {
	app := newTestApp(t)

	for _, id := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		if _, err := app.GetFile(id); !errors.Is(err, core.ErrBadRequest) {
			t.Errorf("GetFile(%q) error = %v, want ErrBadRequest", id, err)
		}
		if err := app.SaveFile(core.Drawing{ID: id}); !errors.Is(err, core.ErrBadRequest) {
			t.Errorf("SaveFile(%q) error = %v, want ErrBadRequest", id, err)
		}
	}
}

func TestListFiles(t *testing.T) {
	app := newTestApp(t)

	for _, id := range []string{"a", "b"} {
		if err := app.SaveFile(core.Drawing{ID: id, Data: "x"}); err != nil {
			t.Fatalf("SaveFile(%s) failed: %v", id, err)
		}
	}
	// unrelated files are ignored
	os.WriteFile(filepath.Join(app.Dir(), "notes.txt"), []byte("hi"), 0644)

	files, err := app.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListFiles() returned %d files, want 2", len(files))
	}
	for _, f := range files {
		if f.Data != "" {
			t.Errorf("ListFiles() loaded payload for %s", f.ID)
		}
	}
}

func TestDeleteFile(t *testing.T) {
	app := newTestApp(t)

	if err := app.SaveFile(core.Drawing{ID: "f1", Data: "x"}); err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}
	if err := app.DeleteFile("f1"); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}
	for _, suffix := range []string{metaSuffix, dataSuffix} {
		if _, err := os.Stat(filepath.Join(app.Dir(), "f1"+suffix)); !os.IsNotExist(err) {
			t.Errorf("%s still present after delete", suffix)
		}
	}
	if err := app.DeleteFile("f1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteFile() error = %v, want ErrNotFound", err)
	}
}

func TestStartup_EmitsOnChange(t *testing.T) {
	app := newTestApp(t)

	changed := make(chan string, 16)
	app.emit = func(event string, data ...any) {
		if event == FilesChangedEvent && len(data) == 1 {
			changed <- data[0].(string)
		}
	}
	app.Startup(context.Background())
	defer app.Shutdown(context.Background())

	if app.watcher == nil {
		t.Skip("fsnotify unavailable on this platform")
	}

	if err := app.SaveFile(core.Drawing{ID: "watched", Data: "x"}); err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}

	select {
	case id := <-changed:
		if id != "watched" {
			t.Errorf("event for %q, want watched", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
}
