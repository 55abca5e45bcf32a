// Package cache keeps decoded input tables between loads so repeated runs,
// or the analyzer and pipeline in one process, decode each XML file once.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a namespaced cache key from its parts
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "herdata:v1:" + hex.EncodeToString(hash[:])
}

// FileKey derives a key from a file's absolute path, size and modification
// time, so an edited input never hits a stale entry
func FileKey(kind, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return CacheKey(kind, abs,
		strconv.FormatInt(info.Size(), 10),
		strconv.FormatInt(info.ModTime().UnixNano(), 10),
	), nil
}

// LoadJSON returns the cached value under key, or calls fill and stores its
// result. A nil cache always calls fill. Undecodable entries are refilled.
// Failing to store the result is logged and does not fail the load.
func LoadJSON[T any](c Cache, key string, ttl time.Duration, log zerolog.Logger, fill func() (T, error)) (T, bool, error) {
	if c != nil {
		if data, ok := c.Get(key); ok {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return v, true, nil
			}
			_ = c.Delete(key)
		}
	}

	v, err := fill()
	if err != nil {
		return v, false, err
	}

	if c != nil {
		if err := store(c, key, ttl, v); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed, continuing without it")
		}
	}
	return v, false, nil
}

func store(c Cache, key string, ttl time.Duration, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := c.Set(key, data, ttl); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}
