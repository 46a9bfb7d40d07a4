package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegister(t *testing.T) {
	s := New(nil)
	if err := s.Register("sweep", "@every 1h", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Register("report", "", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("disabled job must not fail: %v", err)
	}
	if err := s.Register("broken", "not a cron spec", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if !s.IsRunning() || len(s.jobs) != 1 {
		t.Fatalf("want exactly one registered job, got %v", s.jobs)
	}
}

func TestJobRuns(t *testing.T) {
	s := New(nil)
	ran := make(chan struct{}, 1)
	if err := s.Register("tick", "@every 1s", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return errors.New("logged, not fatal")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
}
