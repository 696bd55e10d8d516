package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"edudata-explorer/internal/models"
)

const (
	DefaultExplorerBaseURL   = "https://educationdata.urban.org/api/v1/"
	DefaultCompletionBaseURL = "https://api.openai.com/v1"
	DefaultCompletionModel   = "gpt-4o-mini"
	DefaultMaxTokens         = 150
	DefaultServerAddress     = ":8080"
	DefaultCacheKeyPrefix    = "edudata:fetch:"
)

// EnvFile records which .env file Load picked up, if any.
var EnvFile string

// Load reads configs/config.yaml (or ./config.yaml), merges
// config.<APP_ENVIRONMENT>.yaml over it and applies environment overrides.
// A missing config file is not an error.
func Load() (*Config, error) {
	EnvFile = loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	EnvFile = loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "edudata-explorer")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("explorer.base_url", DefaultExplorerBaseURL)
	v.SetDefault("explorer.timeout", 0)
	v.SetDefault("explorer.default_year", models.DefaultYear)
	v.SetDefault("explorer.registry_path", "")

	v.SetDefault("completion.base_url", DefaultCompletionBaseURL)
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.model", DefaultCompletionModel)
	v.SetDefault("completion.max_tokens", DefaultMaxTokens)
	v.SetDefault("completion.system_prompt", "")
	v.SetDefault("completion.timeout", 0)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.key_prefix", DefaultCacheKeyPrefix)

	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("server.metrics_enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults fills values that were explicitly blanked in a config file.
func applyDefaults(cfg *Config) {
	if cfg.Explorer.BaseURL == "" {
		cfg.Explorer.BaseURL = DefaultExplorerBaseURL
	}
	if !strings.HasSuffix(cfg.Explorer.BaseURL, "/") {
		cfg.Explorer.BaseURL += "/"
	}
	if cfg.Explorer.DefaultYear == 0 {
		cfg.Explorer.DefaultYear = models.DefaultYear
	}

	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = DefaultCompletionBaseURL
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = DefaultCompletionModel
	}
	if cfg.Completion.MaxTokens <= 0 {
		cfg.Completion.MaxTokens = DefaultMaxTokens
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultServerAddress
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Completion.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.Completion.APIKey = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

func validateConfig(cfg *Config) error {
	if _, err := url.ParseRequestURI(cfg.Explorer.BaseURL); err != nil {
		return fmt.Errorf("explorer.base_url: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.Completion.BaseURL); err != nil {
		return fmt.Errorf("completion.base_url: %w", err)
	}
	if cfg.Explorer.DefaultYear < models.MinYear || cfg.Explorer.DefaultYear > models.MaxYear {
		return fmt.Errorf("explorer.default_year must be between %d and %d", models.MinYear, models.MaxYear)
	}
	if cfg.Explorer.Timeout < 0 || cfg.Completion.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", cfg.Cache.Backend)
	}

	return nil
}
