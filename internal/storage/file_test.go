package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileJournal_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "transcripts.jsonl")
	j, err := NewFileJournal(p)
	if err != nil {
		t.Fatalf("init journal: %v", err)
	}

	e1 := Entry{Timestamp: time.Unix(1, 0).UTC(), Session: "tg:1", Status: StatusExported, Artifact: "MODELO SBMN"}
	e2 := Entry{Timestamp: time.Unix(2, 0).UTC(), Session: "tg:2", Status: StatusExportFailed, Error: "403"}
	if err := j.Append(e1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := j.Append(e2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	entries, err := j.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2, got %d", len(entries))
	}
	if entries[0].Session != "tg:1" || entries[1].Status != StatusExportFailed {
		t.Fatalf("order mismatch: %+v", entries)
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileJournal_SkipsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "j.jsonl")
	if err := os.WriteFile(p, []byte("not json\n\n{\"session\":\"s\"}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	j, err := NewFileJournal(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	entries, err := j.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].Session != "s" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestFileJournal_Close(t *testing.T) {
	p := filepath.Join(t.TempDir(), "j.jsonl")
	j, err := NewFileJournal(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := j.Append(Entry{Session: "s1", Status: StatusExported}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := j.Append(Entry{Session: "s2"}); err == nil {
		t.Fatalf("append after close must fail")
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	entries, err := j.Load()
	if err != nil || len(entries) != 1 || entries[0].Session != "s1" {
		t.Fatalf("load after close: %+v %v", entries, err)
	}

	// reopening appends after the existing entries
	j2, err := NewFileJournal(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = j2.Close() }()
	if err := j2.Append(Entry{Session: "s3"}); err != nil {
		t.Fatalf("append reopened: %v", err)
	}
	if entries, _ := j2.Load(); len(entries) != 2 || entries[1].Session != "s3" {
		t.Fatalf("unexpected entries after reopen: %+v", entries)
	}
}

func TestFileJournal_TruncatedTail(t *testing.T) {
	p := filepath.Join(t.TempDir(), "j.jsonl")
	j, err := NewFileJournal(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = j.Close() }()
	if err := j.Append(Entry{Session: "ok"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, _ = f.WriteString(`{"session":"cut`)
	_ = f.Close()

	entries, err := j.Load()
	if err != nil || len(entries) != 1 || entries[0].Session != "ok" {
		t.Fatalf("truncated tail must be dropped: %+v %v", entries, err)
	}
}
