package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

const defaultGreeting = "Olá! Sou o Entrevistador SBMN v6. Vou conduzi-lo através de uma entrevista estruturada para modelar seu processo de negócio. Vamos começar?"

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider   `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"90s"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Interview
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`
	Greeting         string `env:"GREETING"`

	// Export
	GoogleCredentials     string   `env:"GOOGLE_CREDENTIALS"`
	GoogleCredentialsFile string   `env:"GOOGLE_CREDENTIALS_FILE"`
	SheetID               string   `env:"SHEET_ID"`
	ExportExcludeRoles    []string `env:"EXPORT_EXCLUDE_ROLES" envSeparator:","`
	JournalFilePath       string   `env:"JOURNAL_FILE_PATH" envDefault:"data/transcripts.jsonl"`

	// Surfaces
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"`

	// Jobs
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"12h"`
	SweepSchedule  string        `env:"SWEEP_SCHEDULE" envDefault:"@every 15m"`
	ReportSchedule string        `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`

	// Logging
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// ConfigurationError reports a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &ConfigurationError{Field: "env", Reason: err.Error()}
	}
	if cfg.Greeting == "" {
		cfg.Greeting = defaultGreeting
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every entrypoint relies on.
func (c *Config) Validate() error {
	switch LLMProvider(strings.ToLower(string(c.LLMProvider))) {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &ConfigurationError{Field: "GEMINI_API_KEY", Reason: "required for provider gemini"}
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return &ConfigurationError{Field: "OPENAI_API_KEY", Reason: "required for provider openai"}
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return &ConfigurationError{Field: "YANDEX_OAUTH_TOKEN", Reason: "token and YANDEX_FOLDER_ID are required for provider yandex"}
		}
	default:
		return &ConfigurationError{Field: "LLM_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.LLMProvider)}
	}
	if c.LLMTimeout <= 0 {
		return &ConfigurationError{Field: "LLM_TIMEOUT", Reason: "must be positive"}
	}
	if c.SheetID == "" {
		return &ConfigurationError{Field: "SHEET_ID", Reason: "required"}
	}
	if c.GoogleCredentials == "" && c.GoogleCredentialsFile == "" {
		return &ConfigurationError{Field: "GOOGLE_CREDENTIALS", Reason: "service account JSON or GOOGLE_CREDENTIALS_FILE is required"}
	}
	return nil
}

// Credentials returns the service-account JSON, reading the file when no inline value is set.
func (c *Config) Credentials() ([]byte, error) {
	if c.GoogleCredentials != "" {
		return []byte(c.GoogleCredentials), nil
	}
	data, err := os.ReadFile(c.GoogleCredentialsFile)
	if err != nil {
		return nil, &ConfigurationError{Field: "GOOGLE_CREDENTIALS_FILE", Reason: err.Error()}
	}
	return data, nil
}

// IsConfigurationError reports whether err carries a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
