package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Vendor    VendorConfig    `yaml:"vendor" mapstructure:"vendor"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Sales     SalesConfig     `yaml:"sales" mapstructure:"sales"`
	Index     IndexConfig     `yaml:"index" mapstructure:"index"`
	Embed     EmbedConfig     `yaml:"embed" mapstructure:"embed"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Agent     AgentConfig     `yaml:"agent" mapstructure:"agent"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// VendorConfig holds the publication vendor endpoints.
type VendorConfig struct {
	APIBaseURL    string `yaml:"api_base_url" mapstructure:"api_base_url"`
	PortalBaseURL string `yaml:"portal_base_url" mapstructure:"portal_base_url"`
}

// ScrapeConfig configures the manual-acquisition pipeline.
type ScrapeConfig struct {
	OutDir       string `yaml:"out_dir" mapstructure:"out_dir"`
	ProductLimit int    `yaml:"product_limit" mapstructure:"product_limit"`
	Language     string `yaml:"language" mapstructure:"language"`
	YearCap      int    `yaml:"year_cap" mapstructure:"year_cap"`
	SiblingYears bool   `yaml:"sibling_years" mapstructure:"sibling_years"`
	Merge        bool   `yaml:"merge" mapstructure:"merge"`
}

// SalesConfig configures the tabular sales database.
type SalesConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
	DBPath  string `yaml:"db_path" mapstructure:"db_path"`
}

// IndexConfig configures the manual passage index.
type IndexConfig struct {
	QdrantAddr string   `yaml:"qdrant_addr" mapstructure:"qdrant_addr"`
	Collection string   `yaml:"collection" mapstructure:"collection"`
	SourceDirs []string `yaml:"source_dirs" mapstructure:"source_dirs"`
	BatchSize  int      `yaml:"batch_size" mapstructure:"batch_size"`
	Dims       int      `yaml:"dims" mapstructure:"dims"`
}

// EmbedConfig holds embeddings API settings.
type EmbedConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AgentConfig configures the question-answering agent.
type AgentConfig struct {
	SystemPromptPath string `yaml:"system_prompt_path" mapstructure:"system_prompt_path"`
	MaxSteps         int    `yaml:"max_steps" mapstructure:"max_steps"`
	TopK             int    `yaml:"top_k" mapstructure:"top_k"`
	RowLimit         int    `yaml:"row_limit" mapstructure:"row_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MANUALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("vendor.api_base_url", "https://diva-api.tweddle.app")
	v.SetDefault("vendor.portal_base_url", "https://customerportal.tweddle-aws.eu")
	v.SetDefault("scrape.out_dir", "./manuals")
	v.SetDefault("scrape.product_limit", 15)
	v.SetDefault("scrape.language", "en")
	v.SetDefault("scrape.year_cap", 12)
	v.SetDefault("scrape.sibling_years", true)
	v.SetDefault("scrape.merge", true)
	v.SetDefault("sales.data_dir", "./data")
	v.SetDefault("sales.db_path", "./sales.db")
	v.SetDefault("index.qdrant_addr", "localhost:6334")
	v.SetDefault("index.collection", "manuals")
	v.SetDefault("index.source_dirs", []string{"./manuals"})
	v.SetDefault("index.batch_size", 64)
	v.SetDefault("index.dims", 1536)
	v.SetDefault("embed.base_url", "https://api.openai.com/v1")
	v.SetDefault("embed.model", "text-embedding-3-small")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("agent.system_prompt_path", "system_prompt.txt")
	v.SetDefault("agent.max_steps", 8)
	v.SetDefault("agent.top_k", 5)
	v.SetDefault("agent.row_limit", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
