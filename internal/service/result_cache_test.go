package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache(t *testing.T) {
	cache := NewResultCache(time.Minute)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	run := &RunResult{Fingerprint: "abc"}
	cache.Set("abc", run)

	got, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Same(t, run, got)

	cache.Flush()
	_, ok = cache.Get("abc")
	assert.False(t, ok)

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
}

func TestResultCacheExpiry(t *testing.T) {
	cache := NewResultCache(10 * time.Millisecond)
	cache.Set("abc", &RunResult{})

	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get("abc")
	assert.False(t, ok)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
