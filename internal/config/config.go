package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port              int              `json:"port"`
	LogConfig         logger.LogConfig `json:"log_config"`
	Database          DatabaseConfig   `json:"database"`
	AI                AIConfig         `json:"ai"`
	Search            SearchConfig     `json:"search"`
	FileStore         FileStoreConfig  `json:"file_store"`
	MaxUploadBytes    int64            `json:"max_upload_bytes"`
	CORSAllowlist     []string         `json:"cors_allowlist"`
	RateLimitSeconds  int              `json:"rate_limit_seconds"`
	IndexMaintainSpec string           `json:"index_maintain_spec"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type ProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type AIConfig struct {
	Embed              ProviderConfig `json:"embed"`
	Generate           ProviderConfig `json:"generate"`
	Rerank             ProviderConfig `json:"rerank"`
	TimeoutSeconds     int            `json:"timeout_seconds"`
	EmbedCacheSize     int            `json:"embed_cache_size"`
	EmbedCacheTTLHours int            `json:"embed_cache_ttl_hours"`
}

// SearchConfig is the retrieval tuning surface. Pipeline shape (rerank
// on/off, pool widening) lives here rather than in ambient env toggles so
// tests can exercise every shape explicitly.
type SearchConfig struct {
	EmbeddingDim         int  `json:"embedding_dim"`
	ChunkSize            int  `json:"chunk_size"`
	ChunkOverlap         int  `json:"chunk_overlap"`
	EmbedBatchSize       int  `json:"embed_batch_size"`
	IndexThreshold       int  `json:"index_threshold"`
	DefaultTopK          int  `json:"default_top_k"`
	RerankEnable         bool `json:"rerank_enable"`
	RerankPoolMultiplier int  `json:"rerank_pool_multiplier"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database.dsn or database.host/db_name is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.AI.Embed.Provider == "" {
		return nil, fmt.Errorf("ai.embed.provider is required")
	}
	if cfg.AI.Generate.Provider == "" {
		return nil, fmt.Errorf("ai.generate.provider is required")
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	applySearchDefaults(&cfg.Search)
	if cfg.Search.RerankEnable && cfg.AI.Rerank.Provider == "" {
		return nil, fmt.Errorf("ai.rerank.provider is required when search.rerank_enable is set")
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.IndexMaintainSpec == "" {
		cfg.IndexMaintainSpec = "*/10 * * * *"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "none"
	}
	return &cfg, nil
}

func applySearchDefaults(s *SearchConfig) {
	if s.EmbeddingDim == 0 {
		s.EmbeddingDim = 384
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = 500
	}
	if s.ChunkOverlap == 0 {
		s.ChunkOverlap = 50
	}
	if s.EmbedBatchSize == 0 {
		s.EmbedBatchSize = 32
	}
	if s.IndexThreshold == 0 {
		s.IndexThreshold = 1000
	}
	if s.DefaultTopK == 0 {
		s.DefaultTopK = 5
	}
	if s.RerankPoolMultiplier == 0 {
		s.RerankPoolMultiplier = 4
	}
}
