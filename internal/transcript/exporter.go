package transcript

import (
	"context"
	"fmt"
	"time"

	"sbmn-interviewer/internal/completion"
	"sbmn-interviewer/internal/llm"
)

// Sink appends one row to the external store.
type Sink interface {
	AppendRow(ctx context.Context, row []string) error
}

// ExportError reports a failed append. The conversation is unaffected and the
// attempt is not retried.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string { return fmt.Sprintf("export transcript: %v", e.Err) }

func (e *ExportError) Unwrap() error { return e.Err }

type Exporter struct {
	sink     Sink
	exclude  []llm.Role
	detector completion.Detector
	now      func() time.Time
}

// NewExporter builds an exporter that skips the exclude roles when serializing.
func NewExporter(sink Sink, detector completion.Detector, exclude []llm.Role) *Exporter {
	return &Exporter{sink: sink, exclude: exclude, detector: detector, now: time.Now}
}

// Build derives the record for messages without writing it.
func (e *Exporter) Build(messages []llm.Message) Record {
	retained := Retain(messages, e.exclude)
	return Record{
		Timestamp:    e.now(),
		Conversation: Format(retained),
		Artifact:     e.detector.Extract(retained),
	}
}

// Export builds the record and appends it as a single row.
func (e *Exporter) Export(ctx context.Context, messages []llm.Message) (Record, error) {
	rec := e.Build(messages)
	if err := e.sink.AppendRow(ctx, rec.Row()); err != nil {
		return rec, &ExportError{Err: err}
	}
	return rec, nil
}
