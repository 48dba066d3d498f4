package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	filestore "quiz-runner/internal/infra/file"
	"quiz-runner/internal/infra/memory"
	redisstore "quiz-runner/internal/infra/redis"
	sqlitestore "quiz-runner/internal/infra/sqlite"
)

// loadConfig treats a missing file at the default path as "no config";
// everything falls back to built-in defaults.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil
	}
	return cfg, err
}

func newLogger() (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if !verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zcfg.Build()
}

// buildStore wires the snapshot store backend selected by config, mirroring
// how the server variant picks redis over memory when configured.
func buildStore(ctx context.Context, cfg config.Config) (app.SnapshotStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case "", "file":
		dir := cfg.Store.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, err
			}
			dir = filepath.Join(home, ".quiz-runner", "sessions")
		}
		return filestore.NewSnapshotStore(dir), noop, nil
	case "memory":
		return memory.NewSnapshotStore(), noop, nil
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("store backend is redis but redis.addr is not configured")
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.Duration(cfg.Redis.TTL, 14*24*time.Hour)
		return redisstore.NewSnapshotStore(client, ttl), func() { _ = client.Close() }, nil
	case "sqlite":
		path := cfg.Store.SQLite
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(home, ".quiz-runner", "sessions.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		store, err := sqlitestore.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
