package main

import (
	"context"
	"fmt"
	"time"

	"edudata-explorer/internal/common/cache"
	"edudata-explorer/internal/common/config"
	"edudata-explorer/internal/common/database"
	"edudata-explorer/internal/common/llm"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/internal/common/observability"
	"edudata-explorer/internal/explorer"
	answerquery "edudata-explorer/internal/explorer/answer-query"
	fetchdataset "edudata-explorer/internal/explorer/fetch-dataset"
	"edudata-explorer/pkg/registry"
)

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rootFlags.configPath != "" {
		cfg, err = config.LoadFromFile(rootFlags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
}

// newMemoStore picks the fetch memo backend. The returned func releases it.
func newMemoStore(ctx context.Context, cfg *config.Config, log logger.Logger) (cache.MemoStore, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Info("using redis memo store", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
			"prefix":  cfg.Cache.KeyPrefix,
		})
		return cache.NewRedisStore(client, cfg.Cache.KeyPrefix), func() { client.Close() }, nil
	default:
		return cache.NewMemoryStore(), func() {}, nil
	}
}

// buildService wires the explorer from configuration. Callers must invoke
// the returned cleanup.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*explorer.Service, func(), error) {
	reg, err := registry.LoadWithDefaults(cfg.Explorer.RegistryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset registry: %w", err)
	}

	store, closeStore, err := newMemoStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("memo store: %w", err)
	}

	completer := llm.NewClient(&llm.Config{
		BaseURL: cfg.Completion.BaseURL,
		APIKey:  cfg.Completion.APIKey,
		Model:   cfg.Completion.Model,
		Timeout: cfg.Completion.TimeoutDuration(),
	}, nil, log)

	if cfg.Completion.APIKey == "" {
		log.Warn("no completion API key configured; questions will fail", map[string]interface{}{
			"hint": "set OPENAI_API_KEY or completion.api_key",
		})
	}

	obs := observability.New(cfg.App.Name)

	svc := explorer.NewService(explorer.Dependencies{
		Registry:      reg,
		Store:         store,
		Completer:     completer,
		FetchConfig:   fetchdataset.LoadConfig(cfg.Explorer),
		AnswerConfig:  answerquery.LoadConfig(cfg.Completion),
		DefaultYear:   cfg.Explorer.DefaultYear,
		Observability: obs,
		Logger:        log,
	})

	cleanup := func() {
		svc.Close()
		closeStore()
	}
	return svc, cleanup, nil
}

// setup is the common prologue of every subcommand.
func setup(ctx context.Context) (*config.Config, logger.Logger, *explorer.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	log := newLogger(cfg)
	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, log, svc, cleanup, nil
}
