package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"":        Info,
		"verbose": Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestJSONLogger_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Info, Format: FormatJSON, App: "vet-console", Output: &buf})

	log.Debug("hidden", nil)
	log.With(map[string]any{"screen": "animals"}).Warn("remote call failed", map[string]any{"status": 502})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json log: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != "remote call failed" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["app"] != "vet-console" || entry["screen"] != "animals" {
		t.Fatalf("missing context fields: %v", entry)
	}
	if entry["status"] != float64(502) {
		t.Fatalf("missing status field: %v", entry)
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Debug, Format: FormatText, Output: &buf})
	log.Info("starting server", map[string]any{"addr": ":8090"})

	out := buf.String()
	if !strings.Contains(out, "starting server") || !strings.Contains(out, "addr=:8090") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestNop(t *testing.T) {
	Nop().With(map[string]any{"a": 1}).Error("ignored", nil)
}
