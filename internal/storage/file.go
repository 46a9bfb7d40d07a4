package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxEntryBytes bounds one journal line; a transcript is a few hundred KB at most.
const maxEntryBytes = 10 << 20

// FileJournal is a JSON-lines Journal. The file is held open in append mode
// and every entry goes out in a single write, so a crash can only truncate
// the last line. Load drops such a line.
type FileJournal struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// NewFileJournal opens path for appending, creating it and its directory.
func NewFileJournal(path string) (*FileJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &FileJournal{path: path, f: f}, nil
}

func (j *FileJournal) Append(entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return fmt.Errorf("journal %s is closed", j.path)
	}
	if _, err := j.f.Write(line); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// Load reads every entry back in write order. Blank and undecodable lines are skipped.
func (j *FileJournal) Load() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", j.path, err)
	}
	defer func() { _ = f.Close() }()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64<<10), maxEntryBytes)
	var entries []Entry
	for s.Scan() {
		var e Entry
		if len(s.Bytes()) == 0 || json.Unmarshal(s.Bytes(), &e) != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read journal %s: %w", j.path, err)
	}
	return entries, nil
}

// Close releases the append handle. Later appends fail; Load keeps working.
func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	return err
}
