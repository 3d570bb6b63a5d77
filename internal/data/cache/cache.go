// Package cache keeps a short-lived copy of the most recent fetch so rapid
// re-runs do not hammer the logging backend.
package cache

import (
	"crypto/md5"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/util"
)

// DefaultTTL is how long one fetch stays reusable.
const DefaultTTL = 60 * time.Second

type cacheFile struct {
	Key       string               `json:"key"`
	Timestamp int64                `json:"timestamp"`
	Records   []model.RawLogRecord `json:"records"`
}

// FetchCache is a single-slot file cache keyed by the fetch parameters and a
// TTL-sized time bucket. A key therefore expires by construction: the bucket
// index changes every TTL period and the stored key no longer matches.
type FetchCache struct {
	path string
	ttl  time.Duration
	mu   sync.Mutex
}

// NewFetchCache creates a cache backed by the given file path. A zero ttl
// falls back to DefaultTTL.
func NewFetchCache(path string, ttl time.Duration) *FetchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FetchCache{path: path, ttl: ttl}
}

// Key derives the cache key for one fetch configuration at the current time.
func (c *FetchCache) Key(window time.Duration, limit int) string {
	bucket := time.Now().Unix() / int64(c.ttl.Seconds())
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%d_%d", int(window.Hours()), limit, bucket)))
	return fmt.Sprintf("%x", sum)
}

// Get returns the cached records when the stored key matches. Any read or
// decode problem is treated as a miss.
func (c *FetchCache) Get(key string) ([]model.RawLogRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var cached cacheFile
	if err := sonic.Unmarshal(data, &cached); err != nil {
		util.LogDebugf("discarding unreadable fetch cache: %v", err)
		return nil, false
	}
	if cached.Key != key {
		return nil, false
	}
	return cached.Records, true
}

// Set stores one fetch result under the given key. Failures are logged and
// swallowed; caching is best-effort.
func (c *FetchCache) Set(key string, records []model.RawLogRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := sonic.Marshal(cacheFile{
		Key:       key,
		Timestamp: time.Now().Unix(),
		Records:   records,
	})
	if err != nil {
		util.LogWarnf("encode fetch cache: %v", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		util.LogWarnf("write fetch cache: %v", err)
	}
}

// Clear removes the cache file. A missing file is not an error.
func (c *FetchCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
