package config

type ToolConfig struct {
	TavilyAPIKey    string `yaml:"-" env:"TAVILY_API_KEY"`
	TavilyAPIURL    string `yaml:"tavilyAPIURL" env:"TAVILY_API_URL"`
	FirecrawlAPIKey string `yaml:"-" env:"FIRECRAWL_API_KEY"`
	FirecrawlAPIURL string `yaml:"firecrawlAPIURL" env:"FIRECRAWL_API_URL"`

	KnowledgeBasePath string   `yaml:"knowledgeBasePath" env:"SPOAR_KNOWLEDGE_BASE"`
	AllowedFeedURLs   []string `yaml:"allowedFeedURLs"`
}
