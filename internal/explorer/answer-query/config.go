// internal/explorer/answer-query/config.go
package answerquery

import "edudata-explorer/internal/common/config"

const DefaultMaxTokens = 150

type Config struct {
	MaxTokens    int
	SystemPrompt string
}

func LoadConfig(cfg config.CompletionConfig) *Config {
	c := &Config{
		MaxTokens:    cfg.MaxTokens,
		SystemPrompt: cfg.SystemPrompt,
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}
