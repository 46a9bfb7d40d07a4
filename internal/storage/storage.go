package storage

import "time"

type Status string

const (
	StatusExported     Status = "exported"
	StatusExportFailed Status = "export_failed"
)

// Entry is the local copy of one export attempt.
// Entries are appended in chronological order and never rewritten.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	Session      string    `json:"session"`
	Handle       string    `json:"handle"`
	Status       Status    `json:"status"`
	Messages     int       `json:"messages"`
	Conversation string    `json:"conversation"`
	Artifact     string    `json:"artifact"`
	Error        string    `json:"error,omitempty"`
}

// Journal abstracts persistence of export attempts.
// Load returns entries in chronological order.
// Implementations must be safe for concurrent use.
type Journal interface {
	Append(entry Entry) error
	Load() ([]Entry, error)
}
