package memory

import (
	"context"
	"excaliapp/core"
	"excaliapp/stores/storetest"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DrawingRepository {
		return NewStore()
	})
}

func TestMemoryStore_CopiesOnRead(t *testing.T) {
	store := NewStore()
	d := &core.Drawing{ID: "f1", UserID: "a@example.com", Name: "orig"}
	if err := store.Create(context.Background(), d); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	d.Name = "mutated by caller"

	got, _ := store.Lookup(context.Background(), "f1")
	got.Name = "mutated by reader"

	again, _ := store.Lookup(context.Background(), "f1")
	if again.Name != "orig" {
		t.Errorf("stored drawing aliased caller memory: %q", again.Name)
	}
}
