package engine

import (
	"github.com/habiliai/spoar/config"
	"github.com/habiliai/spoar/errors"
)

// New builds the chat model selected by cfg.
func New(cfg config.ModelConfig) (ChatModel, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "no API key configured for provider %s", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIChat(apiKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderGroq:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = config.GroqBaseURL
		}
		return NewOpenAIChat(apiKey, baseURL, cfg.Model), nil
	case config.ProviderAnthropic:
		return NewAnthropicChat(apiKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedProvider, "%s", cfg.Provider)
	}
}
