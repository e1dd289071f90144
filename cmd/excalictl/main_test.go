package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"excaliapp/core"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_BrowserMode(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ls.db")
	base := []string{"--mode", "browser", "--db", db}

	out, err := run(t, `{"elements":[]}`, append(base, "save", "--name", "Plan")...)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var saved core.Drawing
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("save output: %v\n%s", err, out)
	}
	if saved.ID == "" || saved.Name != "Plan" || saved.InStorage != core.InLocal {
		t.Errorf("saved = %+v", saved)
	}

	out, err = run(t, "", append(base, "get", saved.ID)...)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var got core.Drawing
	json.Unmarshal([]byte(out), &got)
	if got.Data != `{"elements":[]}` {
		t.Errorf("data = %q", got.Data)
	}

	out, err = run(t, "", append(base, "duplicate", saved.ID)...)
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	var copied core.Drawing
	json.Unmarshal([]byte(out), &copied)
	if copied.Name != "Plan (Copy)" || copied.ID == saved.ID {
		t.Errorf("copy = %+v", copied)
	}

	out, err = run(t, "", append(base, "list")...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var list []core.Drawing
	json.Unmarshal([]byte(out), &list)
	if len(list) != 2 {
		t.Errorf("list has %d entries, want 2", len(list))
	}

	if _, err := run(t, "", append(base, "delete", saved.ID)...); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := run(t, "", append(base, "get", saved.ID)...); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}
}

func TestCLI_APIUnavailableWithoutToken(t *testing.T) {
	_, err := run(t, "", "--mode", "api", "--token", "short", "list")
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Errorf("error = %v, want unavailable", err)
	}
}

func TestCLI_DesktopFiles(t *testing.T) {
	base := []string{"--mode", "wails", "--data", t.TempDir()}

	out, err := run(t, `{"elements":[]}`, append(base, "save", "--id", "d1", "--name", "Desk")...)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var saved core.Drawing
	json.Unmarshal([]byte(out), &saved)
	if saved.ID != "d1" || saved.InStorage != core.InDesktop {
		t.Errorf("saved = %+v", saved)
	}

	if _, err := run(t, "", append(base, "get", "d1")...); err != nil {
		t.Errorf("get failed: %v", err)
	}
}
