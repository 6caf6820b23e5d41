package cli

import (
	"github.com/aretw0/biocompute/pkg/cache"
	"github.com/aretw0/biocompute/pkg/config"
)

// OpenStore builds the submission cache selected by cfg. The returned close
// function is never nil. A "none" backend yields a nil Store.
func OpenStore(cfg *config.Config) (cache.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return nil, noop, nil
	case config.BackendRedis:
		r := cfg.Cache.Redis
		store := cache.NewRedisStore(r.Addr, r.Password, r.DB, cache.WithPrefix(r.Prefix), cache.WithTTL(r.TTL))
		return store, store.Close, nil
	default:
		return cache.NewFileStore(cfg.Cache.Dir), noop, nil
	}
}
