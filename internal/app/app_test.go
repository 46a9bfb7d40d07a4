package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"sbmn-interviewer/internal/config"
	"sbmn-interviewer/internal/llm"
)

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("debug", true); err != nil {
		t.Fatalf("debug logger: %v", err)
	}
	if _, err := NewLogger("loud", false); !config.IsConfigurationError(err) {
		t.Fatalf("want configuration error for bad level, got %v", err)
	}
}

func TestReadSystemPrompt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(p, []byte("MODELO SBMN {{não interpretar}}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSystemPrompt(p)
	if err != nil || got != "MODELO SBMN {{não interpretar}}" {
		t.Fatalf("prompt must pass through untouched: %q %v", got, err)
	}
	if got, err := ReadSystemPrompt(""); err != nil || got != "" {
		t.Fatalf("empty path: %q %v", got, err)
	}
	if _, err := ReadSystemPrompt(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRoles(t *testing.T) {
	got := roles([]string{" System ", "", "assistant"})
	want := []llm.Role{llm.RoleSystem, llm.RoleAssistant}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if roles(nil) != nil {
		t.Fatalf("empty input must yield the empty exclusion set")
	}
}

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	prompt := filepath.Join(dir, "system_prompt.txt")
	if err := os.WriteFile(prompt, []byte("Entreviste o especialista."), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}
	return &config.Config{
		LLMProvider:       config.ProviderOpenAI,
		OpenAIAPIKey:      "k",
		OpenAIModel:       "gpt-4o-mini",
		SystemPromptPath:  prompt,
		Greeting:          "Olá!",
		SheetID:           "sheet",
		GoogleCredentials: `{"type":"service_account","client_email":"bot@p.iam.gserviceaccount.com","private_key":"-","token_uri":"https://oauth2.googleapis.com/token"}`,
		JournalFilePath:   filepath.Join(dir, "data", "transcripts.jsonl"),
	}
}

func TestBuild(t *testing.T) {
	a, err := Build(context.Background(), validConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.Interview == nil || a.Journal == nil {
		t.Fatalf("incomplete app: %+v", a)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBuild_UnreadableSystemPrompt(t *testing.T) {
	cfg := validConfig(t)
	cfg.SystemPromptPath = filepath.Join(t.TempDir(), "prompts", "system_prompt.txt")

	a, err := Build(context.Background(), cfg, zap.NewNop())
	if a != nil {
		t.Fatalf("no app should be built without the prompt")
	}
	var ce *config.ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "SYSTEM_PROMPT_PATH" {
		t.Fatalf("want SYSTEM_PROMPT_PATH configuration error, got %v", err)
	}
}
