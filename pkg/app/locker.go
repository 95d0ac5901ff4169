package app

import (
	"medbook/pkg/config"
	"medbook/pkg/lock"
)

// NewLocker picks the lock backend named by LOCK_BACKEND. The memory backend
// only serializes work inside one process.
func NewLocker(cfg *config.Config) lock.Locker {
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		if cfg.Client.Redis == nil {
			cfg.SetRedis()
		}
		cfg.Log.Info("Using Redis locks", "addr", cfg.RedisAddr, "ttl", cfg.LockTTL)
		return lock.NewRedisLocker(cfg.Client.Redis, cfg.LockTTL, cfg.LockWait)
	case config.LockBackendMongo:
		if cfg.Client.Mongo == nil {
			cfg.SetMongo()
		}
		cfg.Log.Info("Using MongoDB locks", "collection", lock.LocksCollection, "ttl", cfg.LockTTL)
		return lock.NewMongoLocker(cfg.Client.Mongo.Database(cfg.Database()), cfg.LockTTL, cfg.LockWait)
	default:
		cfg.Log.Warn("Using in-process locks, run a single replica only")
		return lock.NewKeyedMutex()
	}
}
