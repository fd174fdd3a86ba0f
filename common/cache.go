// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
)

// Cache memoizes computed results outside the pure engine. Values are lz4
// compressed; the local tier is an in-process LRU and an optional redis
// tier is shared across instances. The engine itself never sees the cache;
// callers compose it around the computation.
type Cache struct {
	local *lru.Cache
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCache builds a cache from the viper keys cache.local_size,
// cache.redis, cache.redis_url and cache.ttl (seconds).
func NewCache() (*Cache, error) {
	size := viper.GetInt("cache.local_size")
	if size == 0 {
		size = 1024
	}

	local, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		local: local,
		ttl:   time.Duration(viper.GetInt("cache.ttl")) * time.Second,
	}

	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			return nil, err
		}
		c.rdb = redis.NewClient(opt)
	}

	return c, nil
}

// CacheKey hashes the supplied parts into a content-addressed key. Results
// computed from identical inputs and parameters hash to the same key.
func CacheKey(parts ...[]byte) string {
	hasher := blake3.New()
	for _, part := range parts {
		_, _ = hasher.Write(part)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Set stores a value in all configured tiers.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	compressed, err := Compress(value)
	if err != nil {
		return err
	}
	c.local.Add(key, compressed)

	if c.rdb != nil {
		return c.rdb.Set(ctx, key, compressed, c.ttl).Err()
	}
	return nil
}

// Get retrieves a value, trying the local tier first.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.local.Get(key); ok {
		val, err := Decompress(v.([]byte))
		if err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not decompress cached value")
			return nil, false
		}
		return val, true
	}

	if c.rdb != nil {
		val, err := c.rdb.GetEx(ctx, key, c.ttl).Bytes()
		if err != nil {
			return nil, false
		}
		c.local.Add(key, val)
		decompressed, err := Decompress(val)
		if err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not decompress cached value")
			return nil, false
		}
		return decompressed, true
	}

	return nil, false
}

// Invalidate removes a key from all tiers.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.local.Remove(key)
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not invalidate redis key")
		}
	}
}
