package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "lbc:cache:"

// RedisStore keeps entries in Redis so several machines share one cache.
// Keys live under a prefix and are tracked in a sorted set scored by expiry.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires entries after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore dials address lazily.
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(key string) string { return s.prefix + key }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

// Get loads the entry stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// Put stores the entry and records it in the index.
func (s *RedisStore) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Remove deletes the entry and its index member.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove from redis: %w", err)
	}
	return nil
}

// Clear prunes expired index members, then deletes every live entry.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, full...)
	pipe.Del(ctx, s.indexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear redis cache: %w", err)
	}
	return int(del.Val()), nil
}

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Lock takes a SET NX lock on key, retrying every 100ms until ctx is done.
// The returned UnlockFunc only deletes the lock if it is still ours.
func (s *RedisStore) Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	lockKey := s.prefix + "lock:" + key
	val := strconv.FormatInt(time.Now().UnixNano(), 10)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return s.client.Eval(ctx, unlockScript, []string{lockKey}, val).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
