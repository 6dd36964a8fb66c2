package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

type Config struct {
	Driver           string // sqlite | postgres | memory
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the storage section of the application config.
func ConfigFrom(c common.StorageConfig) Config {
	return Config{
		Driver:           c.Driver,
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// Open connects to the configured backend and makes sure the kv table exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (KV, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(ctx, cfg, logger)
	case "postgres":
		return OpenPostgres(ctx, cfg, logger)
	case "memory":
		logger.Info("using in-memory storage; cards will not survive restarts")
		return NewMemory(), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown storage driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

// Close closes the store and logs the outcome.
func Close(kv KV, logger *slog.Logger) {
	if kv == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing storage")
	if err := kv.Close(); err != nil {
		logger.Error("failed to close storage", "error", err)
		return
	}
	logger.Info("storage closed")
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, kv KV, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging storage")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := kv.Ping(ctx); err != nil {
		logger.Error("storage ping failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	logger.Debug("storage ping successful")
	return nil
}
