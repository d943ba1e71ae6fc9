package iocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
	"github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds every Redis round trip issued by the store.
const redisOpTimeout = 5 * time.Second

// Hash fields of a cached entry.
const (
	redisValueField   = "value"
	redisVersionField = "version"
	redisTsField      = "ts"
)

// RedisCacheStore keeps cache entries as Redis hashes under a key prefix.
// Entries expire on their own after ttl; freshness is still checked by the caller.
type RedisCacheStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to Redis using a redis:// or rediss:// URL.
func NewRedisCacheStore(namespace, connStr string, ttl time.Duration) (*RedisCacheStore, error) {
	if err := validateTableName(namespace); err != nil {
		return nil, err
	}
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheStore{client: client, prefix: redisKeyPrefix(namespace), ttl: ttl}, nil
}

// redisKeyPrefix returns the key prefix shared by all entries of a namespace.
func redisKeyPrefix(namespace string) string {
	return "burndown:" + namespace + ":"
}

// Get retrieves a value by key. A missing key yields ErrCacheMiss.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, rs.prefix+key).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get from Redis: %w", err)
	}
	value, ok := fields[redisValueField]
	if !ok {
		return nil, 0, 0, ErrCacheMiss
	}
	version, err := strconv.Atoi(fields[redisVersionField])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields[redisTsField], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(value), version, ts, nil
}

// Set stores a key/value pair and refreshes its expiry.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fullKey := rs.prefix + key
	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, fullKey,
		redisValueField, value,
		redisVersionField, version,
		redisTsField, timestamp,
	)
	if rs.ttl > 0 {
		pipe.Expire(ctx, fullKey, rs.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// GetStatus scans the namespace and reports entry counts, age range and memory usage.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var newest, oldest int64
	iter := rs.client.Scan(ctx, 0, rs.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ts, err := rs.client.HGet(ctx, key, redisTsField).Int64()
		if errors.Is(err, redis.Nil) {
			continue // expired between SCAN and HGET
		}
		if err != nil {
			return status, fmt.Errorf("failed to read entry %s: %w", key, err)
		}
		status.TotalEntries++
		if newest == 0 || ts > newest {
			newest = ts
		}
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		if size, err := rs.client.MemoryUsage(ctx, key).Result(); err == nil {
			status.TableSizeBytes += size
		}
	}
	if err := iter.Err(); err != nil {
		return status, fmt.Errorf("failed to scan keys: %w", err)
	}

	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(newest, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close closes the Redis connection.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}

// clearRedisNamespace deletes every key of a namespace.
func clearRedisNamespace(connStr, namespace string) error {
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	iter := client.Scan(ctx, 0, redisKeyPrefix(namespace)+"*", 0).Iterator()
	pipe := client.Pipeline()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}
