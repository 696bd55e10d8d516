// internal/explorer/fetch-dataset/config.go
package fetchdataset

import (
	"time"

	"edudata-explorer/internal/common/config"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func LoadConfig(cfg config.ExplorerConfig) *Config {
	return &Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.TimeoutDuration(),
	}
}
