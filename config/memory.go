package config

const (
	MemoryBackendInMemory = "memory"
	MemoryBackendSqlite   = "sqlite"
	MemoryBackendPostgres = "postgres"

	DefaultRetrievalThreshold = 0.75
	DefaultDedupThreshold     = 0.90
	DefaultMatchCount         = 3
	DefaultEmbeddingDimension = 1536
	DefaultEmbeddingModel     = "text-embedding-3-small"
)

type MemoryConfig struct {
	Backend     string `yaml:"backend" env:"SPOAR_MEMORY_BACKEND"`
	SqlitePath  string `yaml:"sqlitePath" env:"SPOAR_SQLITE_PATH"`
	PostgresDSN string `yaml:"postgresDSN" env:"DATABASE_URL"`
	Table       string `yaml:"table" env:"SPOAR_MEMORY_TABLE"`

	EmbeddingModel     string  `yaml:"embeddingModel" env:"SPOAR_EMBEDDING_MODEL"`
	Dimension          int     `yaml:"dimension"`
	CacheSize          int     `yaml:"cacheSize"`
	RetrievalThreshold float64 `yaml:"retrievalThreshold"`
	DedupThreshold     float64 `yaml:"dedupThreshold"`
	MatchCount         int     `yaml:"matchCount"`
}
