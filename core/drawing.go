package core

import (
	"context"
	"time"
)

// Provenance tags which backend produced an in-memory copy of a drawing.
type Provenance string

const (
	InDesktop Provenance = "wails"
	InLocal   Provenance = "local"
	InAPI     Provenance = "api"
)

// DefaultName is used when a drawing is saved without a name.
const DefaultName = "Untitled"

type (
	// Drawing is one saved canvas together with its ownership and timestamps.
	// Data and Thumbnail are opaque to every storage layer.
	Drawing struct {
		ID        string     `json:"id"`
		UserID    string     `json:"userId"`
		Name      string     `json:"name"`
		Data      string     `json:"data,omitempty"`
		Thumbnail string     `json:"thumbnail,omitempty"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
		IsPublic  bool       `json:"isPublic"`
		InStorage Provenance `json:"inStorage,omitempty"`
	}

	// SaveRequest carries the caller supplied fields of an upsert. Empty
	// strings and a nil IsPublic mean the field was omitted.
	SaveRequest struct {
		ID        string `json:"id,omitempty"`
		UserID    string `json:"userId,omitempty"`
		Name      string `json:"name,omitempty"`
		Data      string `json:"data,omitempty"`
		Thumbnail string `json:"thumbnail,omitempty"`
		IsPublic  *bool  `json:"isPublic,omitempty"`
	}

	// Backend performs raw CRUD against one storage medium. Exactly one
	// backend is active per running instance.
	Backend interface {
		// ListFiles returns every drawing visible to the backend's scope keyed by id.
		ListFiles(ctx context.Context) (map[string]*Drawing, error)

		// GetFile returns nil without an error when the drawing does not exist
		// or is not visible to the caller.
		GetFile(ctx context.Context, id string) (*Drawing, error)

		// SaveFile creates or updates the drawing identified by req.ID.
		SaveFile(ctx context.Context, req SaveRequest) (*Drawing, error)

		// DeleteFile removes a drawing and fails with ErrNotFound when absent.
		DeleteFile(ctx context.Context, id string) error

		// Available is a cheap capability probe.
		Available(ctx context.Context) bool
	}

	// DrawingRepository is the relational persistence behind the remote API.
	DrawingRepository interface {
		// List returns all drawings owned by userID.
		List(ctx context.Context, userID string) ([]*Drawing, error)

		// Get returns a drawing by id only if it belongs to userID.
		Get(ctx context.Context, userID, id string) (*Drawing, error)

		// Lookup returns a drawing by id regardless of its owner.
		Lookup(ctx context.Context, id string) (*Drawing, error)

		// Create inserts a new drawing. It fails if the id is already taken.
		Create(ctx context.Context, drawing *Drawing) error

		// Update overwrites the mutable fields of a drawing owned by drawing.UserID.
		Update(ctx context.Context, drawing *Drawing) error

		// Delete removes a drawing owned by userID.
		Delete(ctx context.Context, userID, id string) error
	}
)

// Public reports the requested visibility, defaulting to false.
func (r SaveRequest) Public() bool {
	return r.IsPublic != nil && *r.IsPublic
}

// Bool returns a pointer to b, for building save requests.
func Bool(b bool) *bool {
	return &b
}

// Touch returns the timestamp for a save that follows prev. Timestamps are kept
// at microsecond precision so every store round-trips them, and the result is
// always strictly after prev.
func Touch(prev time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}
