package audit

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestLogger_RecordAndRecent(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "imports.log")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	l := NewLogger(filePath, logger)
	l.Record(Entry{JobID: "job-1", Game: "genshin", UID: "u", Source: "url", Imported: 10})
	l.Record(Entry{JobID: "job-2", Game: "starrail", UID: "u", Source: "file", Skipped: 5})

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].JobID != "job-1" || entries[1].JobID != "job-2" {
		t.Fatalf("unexpected entry order: %+v", entries)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("Record must backfill the timestamp")
	}

	limited, err := l.Recent(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != "job-2" {
		t.Fatalf("unexpected limited entries: %+v", limited)
	}
}

func TestLogger_RecentMissingFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "missing.log")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	l := NewLogger(filePath, logger)
	entries, err := l.Recent(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
}
