package api

import (
	"context"
	"encoding/json"
	"errors"
	"excaliapp/core"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testKey = "0123456789abcdef"

func TestAvailable_KeyLength(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		want bool
	}{
		{"empty", "", false},
		{"short", "abc", false},
		{"nine chars", "123456789", false},
		{"padded short", "   12345   ", false},
		{"ten chars", "1234567890", true},
		{"long", testKey, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBackend("http://unused", tc.key, nil)
			if got := b.Available(context.Background()); got != tc.want {
				t.Errorf("Available() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSetAuthKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	b := NewBackend(srv.URL, "", srv.Client())
	if b.Available(context.Background()) {
		t.Fatal("backend without a key reported available")
	}

	b.SetAuthKey(testKey)
	if !b.Available(context.Background()) {
		t.Fatal("backend with a key reported unavailable")
	}
	if _, err := b.ListFiles(context.Background()); err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if gotAuth != "Bearer "+testKey {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
}

func TestListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/drawings/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]core.Drawing{
			"a": {ID: "a", UserID: "u@example.com", Name: "A"},
			"b": {ID: "b", UserID: "u@example.com", Name: "B"},
		})
	}))
	defer srv.Close()

	files, err := NewBackend(srv.URL+"/", testKey, srv.Client()).ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListFiles() returned %d files", len(files))
	}
	for id, f := range files {
		if f.InStorage != core.InAPI {
			t.Errorf("%s InStorage = %q", id, f.InStorage)
		}
	}
}

func TestGetFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/drawings/f1":
			json.NewEncoder(w).Encode(core.Drawing{ID: "f1", Data: "{}"})
		case "/api/drawings/boom":
			http.Error(w, "db down", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"File not found."}`))
		}
	}))
	defer srv.Close()

	b := NewBackend(srv.URL, testKey, srv.Client())
	ctx := context.Background()

	f, err := b.GetFile(ctx, "f1")
	if err != nil || f == nil || f.Data != "{}" || f.InStorage != core.InAPI {
		t.Errorf("GetFile(f1) = %+v, %v", f, err)
	}

	f, err = b.GetFile(ctx, "missing")
	if err != nil || f != nil {
		t.Errorf("GetFile(missing) = %+v, %v; want nil, nil", f, err)
	}

	_, err = b.GetFile(ctx, "boom")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("GetFile(boom) error = %v, want 500 StatusError", err)
	}
	if !strings.Contains(se.Body, "db down") {
		t.Errorf("StatusError body = %q", se.Body)
	}
	if !errors.Is(err, core.ErrUnknown) {
		t.Errorf("500 should unwrap to ErrUnknown")
	}
}

func TestSaveFile_SendsRequest(t *testing.T) {
	var got core.SaveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/drawings/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		now := time.Now().UTC()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(core.Drawing{ID: got.ID, UserID: "u@example.com", Name: got.Name, Data: got.Data, CreatedAt: now, UpdatedAt: now})
	}))
	defer srv.Close()

	b := NewBackend(srv.URL, testKey, srv.Client())
	f, err := b.SaveFile(context.Background(), core.SaveRequest{ID: "f1", Name: "Sketch", Data: "{}", IsPublic: core.Bool(true)})
	if err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}

	if got.ID != "f1" || got.Data != "{}" || !got.Public() {
		t.Errorf("server received %+v", got)
	}
	if f.UserID != "u@example.com" || f.InStorage != core.InAPI {
		t.Errorf("SaveFile() = %+v", f)
	}
}

func TestSaveFile_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"You do not have permission to edit this file."}`))
	}))
	defer srv.Close()

	_, err := NewBackend(srv.URL, testKey, srv.Client()).SaveFile(context.Background(), core.SaveRequest{ID: "f1", Data: "{}"})
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("SaveFile() error = %v, want ErrForbidden", err)
	}
}

func TestDeleteFile(t *testing.T) {
	deleted := map[string]bool{"f1": true}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/drawings/")
		if !deleted[id] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(deleted, id)
		w.Write([]byte(`{"message":"File deleted successfully."}`))
	}))
	defer srv.Close()

	b := NewBackend(srv.URL, testKey, srv.Client())
	if err := b.DeleteFile(context.Background(), "f1"); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}
	if err := b.DeleteFile(context.Background(), "f1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteFile() error = %v, want ErrNotFound", err)
	}
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewBackend(srv.URL, testKey, srv.Client()).ListFiles(context.Background())
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("ListFiles() error = %v, want ErrUnauthorized", err)
	}
}
