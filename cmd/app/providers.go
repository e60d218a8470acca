package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/infra/aqicn"
	"github.com/yanqian/aqi-search/internal/infra/archive"
	"github.com/yanqian/aqi-search/internal/infra/config"
	"github.com/yanqian/aqi-search/internal/infra/lookuprepo"
	"github.com/yanqian/aqi-search/internal/infra/readingcache"
	"github.com/yanqian/aqi-search/internal/interface/view"
)

func provideServiceConfig(cfg *config.Config) aqi.Config {
	return aqi.Config{
		CacheTTL:      cfg.Cache.TTL,
		RecentLimit:   cfg.History.RecentLimit,
		ArchivePrefix: cfg.Archive.Prefix,
	}
}

func provideAQICNClient(cfg *config.Config) (*aqicn.Client, error) {
	return aqicn.NewClient(cfg.AQICN.BaseURL, cfg.AQICN.Token, cfg.AQICN.Timeout)
}

func provideViewOptions(cfg *config.Config) (view.Options, error) {
	loc, err := cfg.Client.Location()
	if err != nil {
		return view.Options{}, err
	}
	return view.Options{Location: loc, TimeLayout: cfg.Client.TimeLayout}, nil
}

func provideReadingCache(cfg *config.Config, logger *slog.Logger) (aqi.Cache, func()) {
	fallback := func() (aqi.Cache, func()) {
		return readingcache.NewMemoryStore(cfg.Cache.MaxEntries), func() {}
	}
	if !cfg.Cache.Redis.Enabled {
		return fallback()
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return fallback()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return fallback()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return fallback()
	}
	logger.Info("valkey reading cache enabled", "addr", cfg.Cache.Redis.Addr)
	return readingcache.NewValkeyStore(client, cfg.Cache.Redis.Prefix), client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Redis.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Redis.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Redis.Addr}}, nil
}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) (aqi.HistoryRepository, func()) {
	fallback := func() (aqi.HistoryRepository, func()) {
		return lookuprepo.NewMemoryRepository(cfg.History.MaxEntries), func() {}
	}
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback()
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback()
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback()
	}
	repo := lookuprepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback()
	}
	logger.Info("history postgres repository enabled")
	return repo, pool.Close
}

func provideArchive(cfg *config.Config, logger *slog.Logger) aqi.Archive {
	if !cfg.Archive.Enabled {
		return archive.NewMemoryArchive(cfg.Archive.MaxEntries)
	}
	store, err := archive.NewS3Archive(cfg.Archive.Endpoint, cfg.Archive.AccessKey, cfg.Archive.SecretKey, cfg.Archive.Bucket, cfg.Archive.Region, logger)
	if err != nil {
		logger.Error("failed to initialize object storage archive, using memory archive", "error", err)
		return archive.NewMemoryArchive(cfg.Archive.MaxEntries)
	}
	logger.Info("object storage archive enabled", "bucket", cfg.Archive.Bucket)
	return store
}
