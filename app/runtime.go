package app

import (
	"context"
	"fmt"

	"github.com/joefazee/roundbet/app/database"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/players"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/settlement"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/cache"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/pubsub"
	"github.com/joefazee/roundbet/internal/sanitizer"
	"github.com/joefazee/roundbet/internal/security"
	"github.com/redis/go-redis/v9"
)

// Runtime owns the process-wide dependencies shared by the api and the
// worker binaries.
type Runtime struct {
	Container *deps.Container
	closers   []func() error
}

// NewRuntime connects to the database and redis (when configured), builds the
// shared cache and bus, initializes every module and syncs the market
// catalogue. maker may be nil for processes that serve no authenticated
// routes.
func NewRuntime(ctx context.Context, cfg *Config, log logger.Logger, maker security.Maker) (*Runtime, error) {
	rt := &Runtime{}

	db, err := database.New(&cfg.DB)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		rt.closers = append(rt.closers, sqlDB.Close)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db, cfg.MigrationsPath); err != nil {
			rt.Close()
			return nil, err
		}
		log.Info("migrations applied", map[string]interface{}{"path": cfg.MigrationsPath})
	}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = cache.NewRedisClient(&cfg.Redis)
		rt.closers = append(rt.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
	}

	var c cache.Cache[string]
	if cfg.CacheBackend == cache.RedisBackend {
		c = cache.NewRedisCacheWithClient[string](rdb, &cfg.Redis)
	} else {
		mc := cache.NewMemoryCache[string]()
		rt.closers = append(rt.closers, func() error { mc.Stop(); return nil })
		c = mc
	}

	var bus pubsub.Bus
	if cfg.BusBackend == cache.RedisBackend {
		bus = pubsub.NewRedisBus(rdb, cfg.Redis.KeyPrefix)
	} else {
		bus = pubsub.NewMemoryBus()
	}
	rt.closers = append(rt.closers, bus.Close)

	rt.Container = deps.NewContainer(db, maker, sanitizer.NewHTMLStripper(), log, c, bus)
	InitModules(rt.Container, cfg)

	if err := markets.SyncCatalogue(ctx, rt.Container, &cfg.Markets); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to sync market catalogue: %w", err)
	}

	return rt, nil
}

// InitModules registers every module's repositories and services in
// dependency order.
func InitModules(container *deps.Container, cfg *Config) {
	markets.InitRepositories(container, &cfg.Markets)
	rounds.InitRepositories(container, &cfg.Rounds)
	wallet.InitRepositories(container, &cfg.Wallet)
	wagers.InitRepositories(container, &cfg.Wagers)
	settlement.InitRepositories(container, &cfg.Settlement)
	players.InitRepositories(container, &cfg.Players)
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
	rt.closers = nil
}
