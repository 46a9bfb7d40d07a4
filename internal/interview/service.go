// Package interview runs the conversation loop: forward the user's text to the
// model with the whole history, record the turn, and export the transcript
// once the model emits the final SBMN model.
package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"sbmn-interviewer/internal/completion"
	"sbmn-interviewer/internal/history"
	"sbmn-interviewer/internal/llm"
	"sbmn-interviewer/internal/storage"
	"sbmn-interviewer/internal/transcript"
)

// Apology replaces the reply when the model call fails.
const Apology = "Desculpe, não consegui obter uma resposta agora. Tente enviar sua mensagem novamente."

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Turn is the outcome of one submitted message.
type Turn struct {
	Reply         string
	Complete      bool
	Exported      bool
	ExportErr     error
	GenerationErr error
	// Discarded is set when the session was reset while the reply was being
	// generated. The reply belongs to the old conversation and is not stored.
	Discarded bool
	Count     int
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Key      string
	Handle   string
	Messages []llm.Message
	Count    int
	// UserMessages counts only the user's own turns.
	UserMessages int
}

type Options struct {
	SystemPrompt string
	Greeting     string
	Detector     completion.Detector
	Journal      storage.Journal
	Logger       *zap.Logger
}

type Service struct {
	sessions *history.Manager
	client   llm.Client
	exporter *transcript.Exporter
	journal  storage.Journal
	detector completion.Detector
	system   string
	greeting string
	log      *zap.Logger
}

func New(client llm.Client, exporter *transcript.Exporter, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	det := opts.Detector
	if det.Marker == "" {
		det = completion.Default
	}
	return &Service{
		sessions: history.NewManager(),
		client:   client,
		exporter: exporter,
		journal:  opts.Journal,
		detector: det,
		system:   opts.SystemPrompt,
		greeting: opts.Greeting,
		log:      log.Named("interview"),
	}
}

// Open returns the session for key, seeding a new one with the greeting.
func (s *Service) Open(key string) Snapshot {
	sess := s.sessions.Get(key)
	s.seed(sess)
	return snapshot(key, sess)
}

// Snapshot returns the current state without seeding.
func (s *Service) Snapshot(key string) (Snapshot, bool) {
	sess, ok := s.sessions.Lookup(key)
	if !ok {
		return Snapshot{}, false
	}
	return snapshot(key, sess), true
}

// Reset clears the conversation, issues a new handle and re-seeds the greeting.
func (s *Service) Reset(key string) Snapshot {
	sess := s.sessions.Get(key)
	old := sess.Handle()
	sess.Reset()
	s.seed(sess)
	s.log.Info("session reset", zap.String("session", key), zap.Stringer("old_handle", old), zap.Stringer("handle", sess.Handle()))
	return snapshot(key, sess)
}

// Sweep drops sessions idle for longer than idle.
func (s *Service) Sweep(idle time.Duration) int {
	n := s.sessions.Sweep(idle)
	if n > 0 {
		s.log.Info("idle sessions swept", zap.Int("removed", n), zap.Int("active", s.sessions.Len()))
	}
	return n
}

// Submit runs one turn. Generation and export failures are reported in Turn;
// only invalid input and overlapping turns are returned as errors.
func (s *Service) Submit(ctx context.Context, key, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}
	sess := s.sessions.Get(key)
	if err := sess.BeginTurn(); err != nil {
		return Turn{}, err
	}
	defer sess.EndTurn()
	s.seed(sess)

	handle := sess.Handle()
	log := s.log.With(zap.String("session", key), zap.Stringer("handle", handle))

	resp, err := s.client.Generate(ctx, s.buildContext(sess, text))
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		return Turn{Reply: Apology, GenerationErr: err, Count: sess.Count()}, nil
	}
	log.Info("llm response",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Int("total_tokens", resp.TotalTokens),
	)

	if !sess.AppendTurnIf(handle, text, resp.Content) {
		log.Info("session reset during generation, reply discarded")
		return Turn{Reply: resp.Content, Discarded: true, Count: sess.Count()}, nil
	}
	turn := Turn{Reply: resp.Content, Count: sess.Count()}

	if !s.detector.IsComplete(resp.Content) {
		return turn, nil
	}
	turn.Complete = true
	messages := sess.Messages()
	rec, err := s.exporter.Export(ctx, messages)
	if err != nil {
		log.Error("transcript export failed", zap.Error(err))
		turn.ExportErr = err
	} else {
		log.Info("transcript exported", zap.Int("messages", len(messages)))
		turn.Exported = true
	}
	s.record(log, key, sess.Handle().String(), len(messages), rec, err)
	return turn, nil
}

func (s *Service) buildContext(sess *history.Session, text string) []llm.Message {
	var msgs []llm.Message
	if s.system != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s.system})
	}
	msgs = append(msgs, sess.Context()...)
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: text})
}

func (s *Service) seed(sess *history.Session) {
	if s.greeting != "" && sess.Count() == 0 {
		sess.AppendLocal(llm.Message{Role: llm.RoleAssistant, Content: s.greeting})
	}
}

func (s *Service) record(log *zap.Logger, key, handle string, n int, rec transcript.Record, exportErr error) {
	if s.journal == nil {
		return
	}
	e := storage.Entry{
		Timestamp:    rec.Timestamp.UTC(),
		Session:      key,
		Handle:       handle,
		Status:       storage.StatusExported,
		Messages:     n,
		Conversation: rec.Conversation,
		Artifact:     rec.Artifact,
	}
	if exportErr != nil {
		e.Status = storage.StatusExportFailed
		e.Error = exportErr.Error()
	}
	if err := s.journal.Append(e); err != nil {
		log.Warn("journal append failed", zap.Error(err))
	}
}

func snapshot(key string, sess *history.Session) Snapshot {
	msgs := sess.Messages()
	return Snapshot{
		Key:          key,
		Handle:       sess.Handle().String(),
		Messages:     msgs,
		Count:        len(msgs),
		UserMessages: sess.Count(llm.RoleAssistant, llm.RoleSystem),
	}
}
