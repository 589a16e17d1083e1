package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterEmitsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "production", "INFO")
	if err != nil {
		t.Fatalf("NewWithWriter failed: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("team", "Inter").Msg("scraping team news")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "pitchside" || entry["team"] != "Inter" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewWithWriterRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := NewWithWriter(&bytes.Buffer{}, "local", "loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
