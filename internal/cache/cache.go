/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cache

import (
	"context"
	"time"

	redis_db "github.com/feedchain/feedchain/internal/redis-db"
	"github.com/go-redis/cache/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = cache.ErrCacheMiss

// Cache stores derived read models such as the impact summary.
type Cache interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get decodes the value stored under key into data. It returns ErrMiss
	// when nothing is stored.
	Get(ctx context.Context, key string, data interface{}) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// cacheSize is the number of entries held in the local TinyLFU tier.
const cacheSize = 1024

// RedisCache is a two tier cache: a process local TinyLFU in front of an
// optional shared Redis.
type RedisCache struct {
	cache *cache.Cache
}

// NewCache builds a cache over client. A nil client gives a process local
// cache only. localTTL bounds how long the local tier may serve an entry
// without consulting Redis.
func NewCache(client *redis_db.Redis, localTTL time.Duration) *RedisCache {
	opts := &cache.Options{
		LocalCache: cache.NewTinyLFU(cacheSize, localTTL),
	}
	if client != nil {
		opts.Redis = client.Client()
	}
	return &RedisCache{cache: cache.New(opts)}
}

func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) error {
	return r.cache.Get(ctx, key, data)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	err := r.cache.Delete(ctx, key)
	if err == ErrMiss {
		return nil
	}
	return err
}
