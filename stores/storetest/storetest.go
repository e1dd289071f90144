// Package storetest holds the behaviour every core.DrawingRepository must show.
package storetest

import (
	"context"
	"errors"
	"excaliapp/core"
	"testing"
	"time"
)

func drawing(id, owner string) *core.Drawing {
	now := core.Touch(time.Time{})
	return &core.Drawing{
		ID:        id,
		UserID:    owner,
		Name:      "Drawing " + id,
		Data:      `{"type":"excalidraw","elements":[]}`,
		Thumbnail: "data:image/png;base64,AA==",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Run exercises a repository returned by newRepo; each subtest gets a fresh one.
func Run(t *testing.T, newRepo func(t *testing.T) core.DrawingRepository) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		want := drawing("f1", "a@example.com")
		want.IsPublic = true
		if err := repo.Create(ctx, want); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		got, err := repo.Get(ctx, "a@example.com", "f1")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.ID != want.ID || got.UserID != want.UserID || got.Name != want.Name || got.Data != want.Data || got.Thumbnail != want.Thumbnail || !got.IsPublic {
			t.Errorf("Get() = %+v, want %+v", got, want)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
			t.Errorf("timestamps not preserved: got %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
		}
	})

	t.Run("GetOtherOwner", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, drawing("f1", "a@example.com")); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if _, err := repo.Get(ctx, "b@example.com", "f1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get() by another owner error = %v, want ErrNotFound", err)
		}
		if _, err := repo.Get(ctx, "a@example.com", "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, drawing("f1", "a@example.com")); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		got, err := repo.Lookup(ctx, "f1")
		if err != nil {
			t.Fatalf("Lookup() failed: %v", err)
		}
		if got.UserID != "a@example.com" {
			t.Errorf("Lookup() owner = %q", got.UserID)
		}
		if _, err := repo.Lookup(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Lookup(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateDuplicateID", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, drawing("f1", "a@example.com")); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if err := repo.Create(ctx, drawing("f1", "b@example.com")); err == nil {
			t.Error("second Create() with the same id should fail")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := newRepo(t)
		for _, d := range []*core.Drawing{
			drawing("a1", "a@example.com"),
			drawing("a2", "a@example.com"),
			drawing("b1", "b@example.com"),
		} {
			if err := repo.Create(ctx, d); err != nil {
				t.Fatalf("Create(%s) failed: %v", d.ID, err)
			}
		}

		list, err := repo.List(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List() returned %d drawings, want 2", len(list))
		}
		for _, d := range list {
			if d.UserID != "a@example.com" {
				t.Errorf("List() leaked %s owned by %s", d.ID, d.UserID)
			}
		}

		empty, err := repo.List(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("List() for unknown owner returned %d drawings", len(empty))
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		d := drawing("f1", "a@example.com")
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		changed := *d
		changed.Name = "Renamed"
		changed.Data = "{}"
		changed.Thumbnail = ""
		changed.IsPublic = true
		changed.UpdatedAt = core.Touch(d.UpdatedAt)
		if err := repo.Update(ctx, &changed); err != nil {
			t.Fatalf("Update() failed: %v", err)
		}

		got, err := repo.Get(ctx, "a@example.com", "f1")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.Name != "Renamed" || got.Data != "{}" || got.Thumbnail != "" || !got.IsPublic {
			t.Errorf("Update() not applied: %+v", got)
		}
		if !got.CreatedAt.Equal(d.CreatedAt) {
			t.Errorf("CreatedAt changed: %v -> %v", d.CreatedAt, got.CreatedAt)
		}
		if !got.UpdatedAt.After(d.UpdatedAt) {
			t.Errorf("UpdatedAt did not advance: %v -> %v", d.UpdatedAt, got.UpdatedAt)
		}
	})

	t.Run("UpdateOtherOwner", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, drawing("f1", "a@example.com")); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		foreign := drawing("f1", "b@example.com")
		foreign.Name = "hijacked"
		if err := repo.Update(ctx, foreign); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Update() by another owner error = %v, want ErrNotFound", err)
		}
		got, _ := repo.Lookup(ctx, "f1")
		if got == nil || got.Name == "hijacked" {
			t.Errorf("drawing was modified by another owner: %+v", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, drawing("f1", "a@example.com")); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if err := repo.Delete(ctx, "b@example.com", "f1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Delete() by another owner error = %v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, "a@example.com", "f1"); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, err := repo.Lookup(ctx, "f1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Lookup() after delete error = %v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, "a@example.com", "f1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})
}
