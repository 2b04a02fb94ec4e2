package lock

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appinv "github.com/mecatos/backend/internal/application/inventory"
	"github.com/mecatos/backend/internal/infrastructure/config"
)

// NewLocker creates the item locker selected by configuration.
// The redis backend requires a connected client.
func NewLocker(cfg config.LockConfig, client *redis.Client, logger *zap.Logger) (appinv.ItemLocker, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryLocker(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("lock backend is redis but no redis client is configured")
		}
		return NewRedisLocker(client, cfg.TTL, cfg.RetryInterval, cfg.AcquireTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown lock backend: %s", cfg.Backend)
	}
}

// Ensure both lockers implement ItemLocker
var (
	_ appinv.ItemLocker = (*MemoryLocker)(nil)
	_ appinv.ItemLocker = (*RedisLocker)(nil)
)
