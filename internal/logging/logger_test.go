package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "warn", Format: "json", Version: "1.2.3"}, "ecboard")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
	l.Warn("kept", "group", "송도고")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "kept" || rec["app"] != "ecboard" || rec["version"] != "1.2.3" || rec["group"] != "송도고" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "debug"}, "ecboard")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Fatalf("debug record missing: %q", buf.String())
	}
}

func TestInvalidOptions(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}, "ecboard"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := New(&bytes.Buffer{}, Options{Level: "loud"}, "ecboard"); err == nil {
		t.Fatalf("expected level error")
	}
	if l, _ := ParseLevel("ERROR"); l != slog.LevelError {
		t.Fatalf("ParseLevel(ERROR) = %v", l)
	}
}
