// Copyright (c) 2026 PMR Atlas. All rights reserved.

package translation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
)

type mapCache struct {
	mutex   sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
	err     error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (cache *mapCache) Get(_ context.Context, key string) (string, error) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	if cache.err != nil {
		return "", cache.err
	}
	value, ok := cache.entries[key]
	if !ok {
		return "", translation.ErrCacheMiss
	}
	return value, nil
}

func (cache *mapCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	if cache.err != nil {
		return cache.err
	}
	cache.entries[key] = value
	cache.ttls[key] = ttl
	return nil
}

func TestCachedTranslator_ServesRepeats(t *testing.T) {
	backend := &scriptedTranslator{}
	cache := newMapCache()
	translator := translation.NewCachedTranslator(backend, cache, time.Hour, discardLogger())

	for range 3 {
		got, err := translator.Translate(context.Background(), "Bursitis", language.English, language.Spanish)
		require.NoError(t, err)
		assert.Equal(t, "es:Bursitis", got)
	}

	assert.Equal(t, int32(1), backend.calls.Load())
	key := translation.CacheKey("Bursitis", language.English, language.Spanish)
	assert.Equal(t, time.Hour, cache.ttls[key])
}

func TestCachedTranslator_FailuresAreNotCached(t *testing.T) {
	backend := &scriptedTranslator{fail: map[language.Code]error{language.Spanish: errUpstream}}
	cache := newMapCache()
	translator := translation.NewCachedTranslator(backend, cache, time.Hour, discardLogger())

	_, err := translator.Translate(context.Background(), "Bursitis", language.English, language.Spanish)
	assert.ErrorIs(t, err, errUpstream)
	assert.Empty(t, cache.entries)
}

func TestCachedTranslator_CacheOutageFallsThrough(t *testing.T) {
	backend := &scriptedTranslator{}
	cache := newMapCache()
	cache.err = errors.New("connection refused")
	translator := translation.NewCachedTranslator(backend, cache, time.Hour, discardLogger())

	got, err := translator.Translate(context.Background(), "Bursitis", language.English, language.Portuguese)
	require.NoError(t, err)
	assert.Equal(t, "pt:Bursitis", got)
}

func TestCacheKey(t *testing.T) {
	key := translation.CacheKey("text", language.English, language.Spanish)

	assert.True(t, strings.HasPrefix(key, constants.RedisPrefixTranslation))
	assert.Equal(t, key, translation.CacheKey("text", language.English, language.Spanish))
	assert.NotEqual(t, key, translation.CacheKey("text", language.English, language.Portuguese))
	assert.NotEqual(t, key, translation.CacheKey("text", language.Spanish, language.English))
}
