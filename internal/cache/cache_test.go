package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pbmd/forgescan/internal/config"
	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}

	if hit || data != nil {
		t.Error("NullCache should never hit")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("a")) != Hash([]byte("a")) {
		t.Error("Hash should be deterministic")
	}

	if Hash([]byte("a")) == Hash([]byte("b")) {
		t.Error("different inputs should hash differently")
	}

	if got := len(Hash([]byte("a"))); got != 64 {
		t.Errorf("Hash length = %d, want 64", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	payload := []byte(`{"created_at":"2020-01-01T00:00:00Z"}`)
	if err := c.Set(ctx, "github:foo/bar", payload, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "github:foo/bar")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}

	if !bytes.Equal(data, payload) {
		t.Errorf("Get = %q, want %q", data, payload)
	}

	if err := c.Delete(ctx, "github:foo/bar"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "github:foo/bar"); hit {
		t.Error("entry still present after Delete")
	}

	if err := c.Delete(ctx, "github:foo/bar"); err != nil {
		t.Errorf("Delete of missing entry error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()

	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	fc := c.(*FileCache)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("entry should be fresh")
	}

	now = now.Add(2 * time.Minute)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should have expired")
	}

	if _, err := os.Stat(fc.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()

	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	path := c.(*FileCache).path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want clean miss", hit, err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    any
		wantErr bool
	}{
		{name: "default", cfg: config.CacheConfig{}, want: &NullCache{}},
		{name: "none", cfg: config.CacheConfig{Backend: config.CacheNone}, want: &NullCache{}},
		{name: "file", cfg: config.CacheConfig{Backend: config.CacheFile, Dir: t.TempDir()}, want: &FileCache{}},
		{name: "redis", cfg: config.CacheConfig{Backend: config.CacheRedis, RedisAddr: "localhost:6379"}, want: &RedisCache{}},
		{name: "redis without addr", cfg: config.CacheConfig{Backend: config.CacheRedis}, wantErr: true},
		{name: "unknown", cfg: config.CacheConfig{Backend: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}

				return
			}

			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			defer c.Close()

			switch tt.want.(type) {
			case *NullCache:
				if _, ok := c.(*NullCache); !ok {
					t.Errorf("New() = %T, want *NullCache", c)
				}
			case *FileCache:
				if _, ok := c.(*FileCache); !ok {
					t.Errorf("New() = %T, want *FileCache", c)
				}
			case *RedisCache:
				if _, ok := c.(*RedisCache); !ok {
					t.Errorf("New() = %T, want *RedisCache", c)
				}
			}
		})
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})

	c := NewRedisCacheWithClient(client, "")
	defer c.Close()

	if got := c.key("swh:https://github.com/a/b/"); got != "forgescan:swh:https://github.com/a/b/" {
		t.Errorf("key() = %q", got)
	}

	scoped := NewRedisCacheWithClient(client, "test:")
	if got := scoped.key("k"); got != "test:k" {
		t.Errorf("key() = %q, want %q", got, "test:k")
	}
}
