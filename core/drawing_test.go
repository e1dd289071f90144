package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTouch_StrictlyIncreasing(t *testing.T) {
	prev := time.Now().UTC().Add(time.Hour)

	next := Touch(prev)
	if !next.After(prev) {
		t.Fatalf("Touch() = %v, want after %v", next, prev)
	}
	if next.Sub(prev) != time.Microsecond {
		t.Errorf("Touch() stepped by %v, want 1µs", next.Sub(prev))
	}
}

func TestTouch_ZeroPrev(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	got := Touch(time.Time{})
	if got.Before(before) {
		t.Errorf("Touch(zero) = %v, expected current time", got)
	}
	if got.Nanosecond()%1000 != 0 {
		t.Errorf("Touch() not truncated to microseconds: %v", got)
	}
}

func TestSaveRequest_Public(t *testing.T) {
	if (SaveRequest{}).Public() {
		t.Error("omitted isPublic should default to false")
	}
	if !(SaveRequest{IsPublic: Bool(true)}).Public() {
		t.Error("isPublic=true not reported")
	}
}

func TestDrawing_JSONFieldNames(t *testing.T) {
	d := Drawing{ID: "f1", UserID: "a@example.com", Name: "Sketch", Data: "{}", IsPublic: true}
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	body := string(raw)
	for _, field := range []string{`"id":"f1"`, `"userId":"a@example.com"`, `"isPublic":true`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(body, field) {
			t.Errorf("encoded drawing %s is missing %s", body, field)
		}
	}
	if strings.Contains(body, "inStorage") {
		t.Errorf("empty provenance should be omitted: %s", body)
	}
}
