// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
)

// ErrCacheMiss is returned by a [Cache] when a key is absent.
var ErrCacheMiss = errors.New("translation: cache miss")

// Cache stores finished translations by key.
type Cache interface {
	Get(context context.Context, key string) (string, error)
	Set(context context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a [Cache] on a Redis client.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (cache *RedisCache) Get(context context.Context, key string) (string, error) {
	value, err := cache.client.Get(context, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

func (cache *RedisCache) Set(context context.Context, key, value string, ttl time.Duration) error {
	return cache.client.Set(context, key, value, ttl).Err()
}

// CachedTranslator serves repeated translations from a cache. Cache errors
// never fail a translation; they only cost a call to the wrapped translator.
type CachedTranslator struct {
	next   Translator
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedTranslator(next Translator, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedTranslator {
	return &CachedTranslator{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (translator *CachedTranslator) Translate(context context.Context, text string, source, target language.Code) (string, error) {
	key := CacheKey(text, source, target)

	cached, err := translator.cache.Get(context, key)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		translator.logger.Warn("translation_cache_read_failed", slog.Any("error", err))
	}

	translated, err := translator.next.Translate(context, text, source, target)
	if err != nil {
		return "", err
	}

	if err := translator.cache.Set(context, key, translated, translator.ttl); err != nil {
		translator.logger.Warn("translation_cache_write_failed", slog.Any("error", err))
	}
	return translated, nil
}

// CacheKey derives the cache key for a translation request.
func CacheKey(text string, source, target language.Code) string {
	hash := sha256.New()
	hash.Write([]byte(source))
	hash.Write([]byte{0})
	hash.Write([]byte(target))
	hash.Write([]byte{0})
	hash.Write([]byte(text))
	return constants.RedisPrefixTranslation + hex.EncodeToString(hash.Sum(nil))
}
