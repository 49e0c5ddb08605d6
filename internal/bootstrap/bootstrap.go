// Package bootstrap builds the components shared by the API server and the
// operator CLI from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	cacheadapter "videoquiz/internal/adapter/cache"
	"videoquiz/internal/adapter/fetcher"
	"videoquiz/internal/adapter/quizgen"
	"videoquiz/internal/adapter/transcriber"
	"videoquiz/internal/cache"
	"videoquiz/internal/config"
	"videoquiz/internal/domain"
	"videoquiz/internal/repository"
	"videoquiz/internal/service"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const memorySweepInterval = time.Minute

// NewCache connects to Redis when redis.address is set and falls back to the
// in-process cache otherwise. The returned func releases the connection.
func NewCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (domain.Cache, func(), error) {
	if cfg.Address == "" {
		logger.Info("Redis address not configured, using in-memory cache")
		memCache := cacheadapter.NewMemoryCacheAdapter()
		return memCache, memCache.StartJanitor(memorySweepInterval), nil
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return cacheadapter.NewRedisCacheAdapter(client), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}, nil
}

// NewTokenBlacklist selects the blacklist store named by jwt.blacklist_store.
func NewTokenBlacklist(cfg config.JWTConfig, db *sqlx.DB, c domain.Cache) domain.TokenBlacklist {
	if cfg.BlacklistStore == "database" {
		return repository.NewSQLTokenBlacklist(db)
	}
	return service.NewCacheTokenBlacklist(c)
}

// NewQuizPipeline wires fetcher, transcriber and generator into a pipeline.
func NewQuizPipeline(ctx context.Context, cfg *config.Config, c domain.Cache, logger *zap.Logger) (*service.QuizPipeline, error) {
	audioFetcher := fetcher.NewYTDLPFetcher(cfg.Fetcher, logger)

	speech, err := transcriber.New(cfg.Transcriber, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	llm, err := quizgen.NewLLM(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	generator, err := quizgen.NewLLMQuizGenerator(llm, cfg.LLM, cfg.Quiz, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz generator: %w", err)
	}

	logger.Info("Quiz pipeline initialized",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("transcriber", cfg.Transcriber.Backend),
		zap.Int("max_concurrent", cfg.Pipeline.MaxConcurrent))
	return service.NewQuizPipeline(audioFetcher, speech, generator, c, cfg.Fetcher, cfg.Pipeline, cfg.Quiz, logger), nil
}
