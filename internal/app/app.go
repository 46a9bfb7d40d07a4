// Package app builds the shared components every entrypoint needs.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sbmn-interviewer/internal/completion"
	"sbmn-interviewer/internal/config"
	"sbmn-interviewer/internal/interview"
	"sbmn-interviewer/internal/llm"
	"sbmn-interviewer/internal/sheets"
	"sbmn-interviewer/internal/storage"
	"sbmn-interviewer/internal/transcript"
)

type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Interview *interview.Service
	// Journal is nil when JOURNAL_FILE_PATH is empty.
	Journal storage.Journal
}

// NewLogger builds the root logger from the level name and mode.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "LOG_LEVEL", Reason: err.Error()}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Build constructs the model client, the sheet sink, the journal and the
// interview service. Every client is created once here and shared.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	prompt, err := ReadSystemPrompt(cfg.SystemPromptPath)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "SYSTEM_PROMPT_PATH", Reason: err.Error()}
	}

	client, model, err := llm.NewFactory(cfg).CreateClient(ctx, string(cfg.LLMProvider))
	if err != nil {
		return nil, &config.ConfigurationError{Field: "LLM_PROVIDER", Reason: err.Error()}
	}

	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	sheet, err := sheets.New(ctx, creds, cfg.SheetID)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "GOOGLE_CREDENTIALS", Reason: err.Error()}
	}

	var journal storage.Journal
	if cfg.JournalFilePath != "" {
		fj, err := storage.NewFileJournal(cfg.JournalFilePath)
		if err != nil {
			log.Warn("failed to init transcript journal", zap.Error(err))
		} else {
			journal = fj
		}
	}

	exporter := transcript.NewExporter(sheet, completion.Default, roles(cfg.ExportExcludeRoles))
	svc := interview.New(llm.Guard(client, model, cfg.LLMTimeout), exporter, interview.Options{
		SystemPrompt: prompt,
		Greeting:     cfg.Greeting,
		Journal:      journal,
		Logger:       log,
	})

	log.Info("interviewer ready",
		zap.String("provider", string(cfg.LLMProvider)),
		zap.String("model", model),
		zap.Duration("llm_timeout", cfg.LLMTimeout),
		zap.Int("prompt_bytes", len(prompt)),
	)
	return &App{Config: cfg, Logger: log, Interview: svc, Journal: journal}, nil
}

// Close releases the journal file, if any.
func (a *App) Close() error {
	if c, ok := a.Journal.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadSystemPrompt loads the instruction prompt. Its content is passed through untouched.
func ReadSystemPrompt(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	return string(data), nil
}

func roles(names []string) []llm.Role {
	var out []llm.Role
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, llm.Role(strings.ToLower(n)))
		}
	}
	return out
}
