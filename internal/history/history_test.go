package history

import (
	"sync"
	"testing"
	"time"

	"sbmn-interviewer/internal/llm"
)

func TestSessionAppendCountReset(t *testing.T) {
	s := NewSession()
	s.AppendLocal(llm.Message{Role: llm.RoleAssistant, Content: "olá"})
	s.AppendTurn("oi", "vamos começar")
	s.Append(llm.Message{Role: llm.RoleUser, Content: "processo de compras"})

	if got := s.Count(); got != 4 {
		t.Fatalf("want 4 messages, got %d", got)
	}
	if got := s.Count(llm.RoleAssistant); got != 2 {
		t.Fatalf("want 2 non-assistant messages, got %d", got)
	}

	ctx := s.Context()
	if len(ctx) != 3 || ctx[0].Content != "oi" {
		t.Fatalf("local greeting leaked into model context: %+v", ctx)
	}

	msgs := s.Messages()
	if msgs[0].Content != "olá" || msgs[2].Role != llm.RoleAssistant {
		t.Fatalf("unexpected order: %+v", msgs)
	}

	// copy semantics
	msgs[0].Content = "mutated"
	if s.Messages()[0].Content != "olá" {
		t.Fatalf("internal state mutated via returned slice")
	}

	before := s.Handle()
	s.Reset()
	if s.Count() != 0 {
		t.Fatalf("reset did not clear session")
	}
	if s.Handle() == before {
		t.Fatalf("reset must issue a fresh handle")
	}
	s.Append(llm.Message{Role: llm.RoleUser, Content: "novo"})
	if m := s.Messages(); len(m) != 1 || m[0].Content != "novo" {
		t.Fatalf("residue after reset: %+v", m)
	}
}

func TestCountMatchesAppendsSinceReset(t *testing.T) {
	s := NewSession()
	for n := 0; n < 5; n++ {
		for i := 0; i < n; i++ {
			s.Append(llm.Message{Role: llm.RoleUser, Content: "x"})
		}
		if s.Count() != n {
			t.Fatalf("want %d, got %d", n, s.Count())
		}
		s.Reset()
		if s.Count() != 0 {
			t.Fatalf("count after reset: %d", s.Count())
		}
	}
}

func TestBeginTurnRejectsOverlap(t *testing.T) {
	s := NewSession()
	if err := s.BeginTurn(); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if err := s.BeginTurn(); err != ErrTurnInProgress {
		t.Fatalf("want ErrTurnInProgress, got %v", err)
	}
	s.EndTurn()
	if err := s.BeginTurn(); err != nil {
		t.Fatalf("turn after end: %v", err)
	}
	s.EndTurn()
}

func TestManagerIsolation(t *testing.T) {
	m := NewManager()
	a := m.Get("a")
	b := m.Get("b")
	a.AppendTurn("hello", "hi")
	b.AppendTurn("foo", "bar")

	if m.Get("a") != a {
		t.Fatalf("Get must return the same session")
	}
	if a.Handle() == b.Handle() {
		t.Fatalf("sessions must not share a handle")
	}

	m.Reset("a")
	if a.Count() != 0 {
		t.Fatalf("reset did not clear a")
	}
	if b.Count() != 2 {
		t.Fatalf("reset should not affect other sessions")
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Fatalf("lookup must not create sessions")
	}
}

func TestManagerConcurrentAppends(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Get("shared").AppendTurn("u", "a")
		}()
	}
	wg.Wait()
	msgs := m.Get("shared").Messages()
	if len(msgs) != 100 {
		t.Fatalf("want 100 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		want := llm.RoleUser
		if i%2 == 1 {
			want = llm.RoleAssistant
		}
		if msg.Role != want {
			t.Fatalf("alternation broken at %d: %s", i, msg.Role)
		}
	}
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager()
	m.now = func() time.Time { return now }

	m.Get("old").Append(llm.Message{Role: llm.RoleUser, Content: "x"})
	busy := m.Get("busy")
	if err := busy.BeginTurn(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer busy.EndTurn()

	now = now.Add(2 * time.Hour)
	m.Get("fresh").Append(llm.Message{Role: llm.RoleUser, Content: "y"})

	if removed := m.Sweep(time.Hour); removed != 1 {
		t.Fatalf("want 1 removed, got %d", removed)
	}
	if _, ok := m.Lookup("old"); ok {
		t.Fatalf("idle session not swept")
	}
	if _, ok := m.Lookup("fresh"); !ok {
		t.Fatalf("active session swept")
	}
	if _, ok := m.Lookup("busy"); !ok {
		t.Fatalf("busy session swept")
	}
}

func TestAppendTurnIf(t *testing.T) {
	s := NewSession()
	h := s.Handle()
	if !s.AppendTurnIf(h, "oi", "olá") || s.Count() != 2 {
		t.Fatalf("current handle must append the pair")
	}
	s.Reset()
	if s.AppendTurnIf(h, "velha", "resposta velha") {
		t.Fatalf("stale handle must not append")
	}
	if s.Count() != 0 {
		t.Fatalf("residue after reset: %+v", s.Messages())
	}
}

func TestAppendTurnIfRacingReset(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				h := s.Handle()
				s.AppendTurnIf(h, h.String(), "r")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Reset()
		}
	}()
	wg.Wait()

	current := s.Handle().String()
	for _, m := range s.Messages() {
		if m.Role == llm.RoleUser && m.Content != current {
			t.Fatalf("turn from handle %s leaked into conversation %s", m.Content, current)
		}
	}
}
