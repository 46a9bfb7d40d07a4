package llm

import (
	"context"
	"fmt"
	"strings"

	"sbmn-interviewer/internal/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	GeminiAPIKey       string
	GeminiModel        string
	OpenaiAPIKey       string
	OpenaiBaseURL      string
	OpenaiModel        string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexOAuthToken   string
	YandexFolderID     string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenaiModel:        cfg.OpenAIModel,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

// CreateClient builds the provider client and returns it with the model name used for logging.
func (f *Factory) CreateClient(ctx context.Context, provider string) (Client, string, error) {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		c, err := NewGemini(ctx, f.GeminiAPIKey, f.GeminiModel)
		if err != nil {
			return nil, "", err
		}
		return c, f.GeminiModel, nil
	case ProviderOpenAI:
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, f.OpenaiModel, f.OpenRouterReferrer, f.OpenRouterTitle), f.OpenaiModel, nil
	case ProviderYandex:
		c, err := NewYandex(f.YandexOAuthToken, f.YandexFolderID)
		if err != nil {
			return nil, "", err
		}
		return c, "yandexgpt-lite", nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider: %s", provider)
	}
}
