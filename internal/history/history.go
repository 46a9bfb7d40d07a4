package history

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"sbmn-interviewer/internal/llm"
)

// ErrTurnInProgress is returned when a session already has a generation call in flight.
var ErrTurnInProgress = errors.New("another message is still being processed for this session")

type entry struct {
	msg  llm.Message
	used bool
}

// Session is the conversation log of one user session together with the
// handle of its current generation conversation.
type Session struct {
	mu         sync.RWMutex
	turn       sync.Mutex
	entries    []entry
	handle     uuid.UUID
	lastActive time.Time
	now        func() time.Time
}

func newSession(now func() time.Time) *Session {
	return &Session{handle: uuid.New(), lastActive: now(), now: now}
}

// NewSession returns an empty standalone session.
func NewSession() *Session { return newSession(time.Now) }

// Append adds a message that is also sent to the model on later turns.
func (s *Session) Append(msg llm.Message) { s.append(true, msg) }

// AppendLocal adds a display-only message: counted and exported, never sent to the model.
func (s *Session) AppendLocal(msg llm.Message) { s.append(false, msg) }

// AppendTurn adds a user message and its reply as one step.
func (s *Session) AppendTurn(user, assistant string) {
	s.append(true,
		llm.Message{Role: llm.RoleUser, Content: user},
		llm.Message{Role: llm.RoleAssistant, Content: assistant},
	)
}

// AppendTurnIf appends the pair only while the session still has handle.
// It reports false, leaving the log untouched, after a Reset.
func (s *Session) AppendTurnIf(handle uuid.UUID, user, assistant string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != handle {
		return false
	}
	s.entries = append(s.entries,
		entry{msg: llm.Message{Role: llm.RoleUser, Content: user}, used: true},
		entry{msg: llm.Message{Role: llm.RoleAssistant, Content: assistant}, used: true},
	)
	s.lastActive = s.now()
	return true
}

func (s *Session) append(used bool, msgs ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.entries = append(s.entries, entry{msg: m, used: used})
	}
	s.lastActive = s.now()
}

// Reset clears the log and invalidates the handle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.handle = uuid.New()
	s.lastActive = s.now()
}

// Count returns the number of messages, skipping the given roles.
func (s *Session) Count(exclude ...llm.Role) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(exclude) == 0 {
		return len(s.entries)
	}
	n := 0
	for _, e := range s.entries {
		if !hasRole(exclude, e.msg.Role) {
			n++
		}
	}
	return n
}

// Messages returns a copy of the whole log.
func (s *Session) Messages() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]llm.Message, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.msg)
	}
	return out
}

// Context returns only the messages sent to the model.
func (s *Session) Context() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []llm.Message
	for _, e := range s.entries {
		if e.used {
			out = append(out, e.msg)
		}
	}
	return out
}

func (s *Session) Handle() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// BeginTurn claims the session for one generation call. Every successful call
// must be paired with EndTurn.
func (s *Session) BeginTurn() error {
	if !s.turn.TryLock() {
		return ErrTurnInProgress
	}
	return nil
}

func (s *Session) EndTurn() { s.turn.Unlock() }

func (s *Session) busy() bool {
	if s.turn.TryLock() {
		s.turn.Unlock()
		return false
	}
	return true
}

func hasRole(roles []llm.Role, r llm.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// Manager keeps one isolated Session per key.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session), now: time.Now}
}

// Get returns the session for key, creating it when absent.
func (m *Manager) Get(key string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s = newSession(m.now)
	m.sessions[key] = s
	return s
}

// Lookup returns the session for key without creating it.
func (m *Manager) Lookup(key string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Reset clears the session for key if it exists.
func (m *Manager) Reset(key string) {
	if s, ok := m.Lookup(key); ok {
		s.Reset()
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than idle. Sessions with a turn in
// flight are kept. It returns the number of removed sessions.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, s := range m.sessions {
		if s.LastActive().Before(cutoff) && !s.busy() {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}
