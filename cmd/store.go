package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/cache"
	"github.com/sells-group/influencer-os/internal/dashboard"
	"github.com/sells-group/influencer-os/internal/store"
)

const defaultSQLitePath = "influencer.db"

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initCache returns the Redis cache when enabled, otherwise a no-op.
func initCache(ctx context.Context) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return cache.Noop{}, nil
	}
	client, err := cache.Connect(cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	rc := cache.NewRedis(client, cfg.Cache.Prefix, cfg.Cache.TTL)
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	zap.L().Info("cache: redis connected", zap.String("prefix", cfg.Cache.Prefix), zap.Duration("ttl", cfg.Cache.TTL))
	return rc, nil
}

// appEnv bundles the store and the dashboard service for a command.
type appEnv struct {
	Store   store.Store
	Cache   cache.Cache
	Service *dashboard.Service
}

func (e *appEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	c, err := initCache(ctx)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "init cache")
	}
	return &appEnv{Store: st, Cache: c, Service: dashboard.New(st, c)}, nil
}
