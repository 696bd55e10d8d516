package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Explorer   ExplorerConfig   `mapstructure:"explorer"`
	Completion CompletionConfig `mapstructure:"completion"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ExplorerConfig covers the education data API side.
type ExplorerConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds, 0 = transport default
	DefaultYear  int    `mapstructure:"default_year"`
	RegistryPath string `mapstructure:"registry_path"`
}

func (e ExplorerConfig) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout) * time.Millisecond
}

type CompletionConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	SystemPrompt string `mapstructure:"system_prompt"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds, 0 = transport default
}

func (c CompletionConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend"` // memory | redis
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
