package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nitesh/velara/internal/api"
	"github.com/nitesh/velara/internal/auth"
	"github.com/nitesh/velara/internal/config"
	"github.com/nitesh/velara/internal/db"
	"github.com/nitesh/velara/internal/llm"
	"github.com/nitesh/velara/internal/media"
	"github.com/nitesh/velara/internal/service"
	"github.com/nitesh/velara/internal/store"
)

// repository is the store view the commands need: keyed records plus health.
type repository interface {
	store.Repository
	store.Pinger
}

// openRepository builds the configured store backend. The returned close
// func releases connections and is never nil.
func openRepository(ctx context.Context, cfg *config.Config) (repository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StoreMemory:
		log.Println("[store] backend=memory (articles are lost on restart)")
		return store.NewBlobStore(store.NewMemoryCollection()), noop, nil

	case config.StoreFile:
		log.Printf("[store] backend=file path=%s", cfg.Store.FilePath)
		return store.NewBlobStore(store.NewFileCollection(cfg.Store.FilePath)), noop, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("[store] warning: redis ping failed: %v", err)
		}
		log.Printf("[store] backend=redis addr=%s key=%s", cfg.Redis.Addr, cfg.Redis.Key)
		return store.NewBlobStore(store.NewRedisCollection(rdb, cfg.Redis.Key)), func() { rdb.Close() }, nil

	case config.StorePostgres:
		opts := dbOptions(cfg)
		sqlDB, err := db.Open(ctx, opts)
		if err != nil {
			return nil, noop, err
		}
		if err := store.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, noop, fmt.Errorf("migrations: %w", err)
		}
		log.Printf("[store] backend=postgres driver=%s", opts.DriverName())
		return store.NewPgStore(sqlDB, opts.DriverName()), func() { sqlDB.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func dbOptions(cfg *config.Config) db.Options {
	return db.Options{
		Driver:   cfg.Database.Driver,
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	}
}

// checkStore refuses to start on a store that cannot be decoded. Other read
// errors are only logged since the backend may still be coming up.
func checkStore(ctx context.Context, repo store.Repository) error {
	articles, err := repo.ListAll(ctx)
	if errors.Is(err, store.ErrCorrupt) {
		return err
	}
	if err != nil {
		log.Printf("[store] warning: initial read failed: %v", err)
		return nil
	}
	log.Printf("[store] loaded articles=%d", len(articles))
	return nil
}

// newGeneration returns the article generator and the raw prompt proxy. Either
// is nil when the provider is disabled or has no API key.
func newGeneration(cfg *config.Config) (service.Generator, api.Prompter, error) {
	var completer llm.Completer

	switch cfg.LLM.Provider {
	case config.LLMNone:
		log.Println("[llm] provider=none, generation disabled")
		return nil, nil, nil

	case config.LLMOllama:
		c := llm.NewOllamaClient(cfg.LLM.OllamaURL, cfg.LLM.Model, nil)
		c.SetLogger(log.Printf)
		completer = c

	case config.LLMOpenAI:
		if cfg.LLM.APIKey == "" {
			log.Println("[llm] warning: no API key set, generation disabled")
			return nil, nil, nil
		}
		c, err := llm.NewOpenAICompleter(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		completer = c

	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}

	gw := llm.NewGateway(completer, llm.WithRateLimit(cfg.LLM.RateLimit, cfg.LLM.Burst))
	log.Printf("[llm] provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	return gw, gw, nil
}

func newIngestor(ctx context.Context, cfg *config.Config) (media.Ingestor, error) {
	if cfg.Media.Backend != config.MediaS3 {
		return media.NewDataURIIngestor(), nil
	}
	ing, err := media.NewS3IngestorFromEnv(ctx, media.S3Options{
		Bucket:        cfg.Media.Bucket,
		Region:        cfg.Media.Region,
		Prefix:        cfg.Media.Prefix,
		PublicBaseURL: cfg.Media.PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[media] backend=s3 bucket=%s", cfg.Media.Bucket)
	return ing, nil
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.Auth.Mode != config.AuthFirebase {
		return auth.NewSharedCode(cfg.Auth.AccessCode), nil
	}
	client, err := auth.InitializeFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
	if err != nil {
		return nil, err
	}
	log.Println("[auth] mode=firebase")
	return auth.NewFirebaseVerifier(client), nil
}
