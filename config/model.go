package config

const (
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"

	GroqBaseURL = "https://api.groq.com/openai/v1"
)

type ModelConfig struct {
	Provider string `yaml:"provider" env:"SPOAR_PROVIDER"`
	Model    string `yaml:"model" env:"SPOAR_MODEL"`
	BaseURL  string `yaml:"baseURL" env:"SPOAR_BASE_URL"`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	GroqAPIKey      string `yaml:"-" env:"GROQ_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
}

// APIKey returns the key of the configured chat provider.
func (c ModelConfig) APIKey() string {
	switch c.Provider {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.OpenAIAPIKey
	}
}
