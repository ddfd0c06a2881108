package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for SearchForge
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Features FeaturesConfig `mapstructure:"features"`
	UI       UIConfig       `mapstructure:"ui"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds the embedded key-value store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SearchConfig holds search provider configuration.
// Provider selects one of: bing, google, serper, searchapi, search1api, searxng.
type SearchConfig struct {
	Provider       string        `mapstructure:"provider"`
	BingKey        string        `mapstructure:"bing_key"`
	GoogleKey      string        `mapstructure:"google_key"`
	GoogleCX       string        `mapstructure:"google_cx"`
	SerperKey      string        `mapstructure:"serper_key"`
	SearchAPIKey   string        `mapstructure:"searchapi_key"`
	Search1APIKey  string        `mapstructure:"search1api_key"`
	SearXNGBaseURL string        `mapstructure:"searxng_base_url"`
	ReferenceCount int           `mapstructure:"reference_count"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Temperature   float32       `mapstructure:"temperature"`
	StreamTimeout time.Duration `mapstructure:"stream_timeout"`
}

// FeaturesConfig toggles optional behavior
type FeaturesConfig struct {
	RelatedQuestions bool `mapstructure:"related_questions"`
	ChatHistory      bool `mapstructure:"chat_history"`
	MaxHistoryLen    int  `mapstructure:"max_history_len"`
}

// UIConfig holds static asset serving configuration
type UIConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SEARCHFORGE")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8800)

	v.SetDefault("database.path", "./data/search.db")

	v.SetDefault("search.provider", "searxng")
	v.SetDefault("search.searxng_base_url", "http://localhost:8080/search")
	v.SetDefault("search.reference_count", 8)
	v.SetDefault("search.timeout", 5*time.Second)

	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.stream_timeout", 5*time.Minute)

	v.SetDefault("features.related_questions", true)
	v.SetDefault("features.chat_history", false)
	v.SetDefault("features.max_history_len", 10)

	v.SetDefault("ui.dir", "./ui")
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
