package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/spoar/errors"
)

type (
	LoopConfig struct {
		MaxIterations       int    `yaml:"maxIterations"`
		SenseEveryIteration bool   `yaml:"senseEveryIteration"`
		LogDir              string `yaml:"logDir" env:"SPOAR_LOG_DIR"`
	}

	AssistantConfig struct {
		OutputDir   string  `yaml:"outputDir" env:"SPOAR_AUTOMATION_DIR"`
		Temperature float64 `yaml:"temperature"`
	}

	Config struct {
		Model     ModelConfig     `yaml:"model"`
		Memory    MemoryConfig    `yaml:"memory"`
		Loop      LoopConfig      `yaml:"loop"`
		Assistant AssistantConfig `yaml:"assistant"`
		Tools     ToolConfig      `yaml:"tools"`
		Speech    SpeechConfig    `yaml:"speech"`
		Log       LogConfig       `yaml:"log"`
	}
)

func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: ProviderGroq,
			Model:    "openai/gpt-oss-120b",
		},
		Memory: MemoryConfig{
			Backend:            MemoryBackendInMemory,
			SqlitePath:         "spoar.db",
			Table:              "memories",
			EmbeddingModel:     DefaultEmbeddingModel,
			Dimension:          DefaultEmbeddingDimension,
			CacheSize:          256,
			RetrievalThreshold: DefaultRetrievalThreshold,
			DedupThreshold:     DefaultDedupThreshold,
			MatchCount:         DefaultMatchCount,
		},
		Loop: LoopConfig{
			MaxIterations: 5,
			LogDir:        "logs",
		},
		Assistant: AssistantConfig{
			OutputDir:   "generated_automations",
			Temperature: 0.7,
		},
		Tools: ToolConfig{
			TavilyAPIURL:      "https://api.tavily.com",
			FirecrawlAPIURL:   "https://api.firecrawl.dev",
			KnowledgeBasePath: "sample_knowledge_base.json",
		},
		Speech: SpeechConfig{
			Provider:  SpeechProviderOpenAI,
			OutputDir: "audio",
		},
		Log: LogConfig{
			LogLevel:   "info",
			LogHandler: "default",
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path and
// finally the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		yamlBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read file %s", path)
		}
		if err := yaml.Unmarshal(yamlBytes, c); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal file %s", path)
		}
	}

	if err := resolveConfig(&c.Model, &c.Memory, &c.Loop, &c.Assistant, &c.Tools, &c.Speech, &c.Log); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderOpenAI, ProviderGroq, ProviderAnthropic:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown model provider %q", c.Model.Provider)
	}

	switch c.Memory.Backend {
	case MemoryBackendInMemory, MemoryBackendSqlite:
	case MemoryBackendPostgres:
		if c.Memory.PostgresDSN == "" {
			return errors.Wrapf(errors.ErrInvalidConfig, "postgres memory backend requires DATABASE_URL")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", c.Memory.Backend)
	}

	m := c.Memory
	if m.RetrievalThreshold <= 0 || m.DedupThreshold > 1 {
		return errors.Wrapf(errors.ErrInvalidConfig, "thresholds must be within (0, 1]")
	}
	if m.RetrievalThreshold >= m.DedupThreshold {
		return errors.Wrapf(errors.ErrInvalidConfig, "retrieval threshold %.2f must be looser than dedup threshold %.2f", m.RetrievalThreshold, m.DedupThreshold)
	}
	if m.MatchCount <= 0 || m.Dimension <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "matchCount and dimension must be positive")
	}

	if c.Loop.MaxIterations <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "maxIterations must be positive")
	}

	switch c.Speech.Provider {
	case SpeechProviderOpenAI, SpeechProviderElevenLabs:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown speech provider %q", c.Speech.Provider)
	}

	return nil
}
