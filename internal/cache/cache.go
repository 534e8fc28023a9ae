// Package cache stores raw HTTP response bodies so repeated runs do not hit
// PubMed, forge APIs or Software Heritage again.
//
// Three backends are available: NullCache (no caching), FileCache (one JSON
// file per entry under a hashed directory layout) and RedisCache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pbmd/forgescan/internal/config"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// New builds the backend selected by cfg.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", config.CacheNone:
		return NewNullCache(), nil
	case config.CacheFile:
		return NewFileCache(cfg.Dir)
	case config.CacheRedis:
		return NewRedisCache(RedisOptions{Addr: cfg.RedisAddr})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Hash returns the hex-encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
