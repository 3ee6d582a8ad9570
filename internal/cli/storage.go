package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/loom/internal/config"
	"github.com/aretw0/loom/pkg/adapters/file"
	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/adapters/redis"
	"github.com/aretw0/loom/pkg/adapters/sqlite"
	"github.com/aretw0/loom/pkg/persistence/middleware"
	"github.com/aretw0/loom/pkg/ports"
)

// Storage is the snapshot backend selected by the configuration.
type Storage struct {
	Snapshots ports.SnapshotStore
	// Locker is set for backends shared between processes.
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connection.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage builds the configured backend and wraps it with the TTL,
// encryption and masking middlewares that the configuration enables.
func OpenStorage(ctx context.Context, cfg config.Storage, logger *slog.Logger) (*Storage, error) {
	st := &Storage{}

	var base ports.SnapshotStore
	switch cfg.Driver {
	case config.DriverMemory, "":
		base = memory.NewStore()
	case config.DriverFile:
		base = file.New(cfg.Path)
	case config.DriverSQLite:
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		base = db
		st.close = db.Close
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		rdb := redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
		}
		prefix := cfg.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		base = rdb
		st.Locker = redis.NewLocker(rdb.Client(), prefix)
		st.close = rdb.Close
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	mws, err := storageMiddlewares(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	st.Snapshots = middleware.Chain(base, mws...)

	logger.Debug("Storage opened", "driver", cfg.Driver, "middlewares", len(mws))
	return st, nil
}

// storageMiddlewares returns the enabled middlewares, outermost first: values
// are masked before they are encrypted, and expiry applies to what is stored.
func storageMiddlewares(cfg config.Storage) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskFields) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.MaskFields)
		if err != nil {
			return nil, fmt.Errorf("invalid mask_fields: %w", err)
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption_key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, fmt.Errorf("invalid encryption_key: %w", err)
		}
		mws = append(mws, enc)
	}
	if cfg.TTL.Duration > 0 {
		mws = append(mws, middleware.NewTTLMiddleware(cfg.TTL.Duration))
	}
	return mws, nil
}
