package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "doc:abc")
	if err != nil || hit {
		t.Fatalf("Get before Set: hit=%v err=%v", hit, err)
	}

	// Round-trip
	want := []byte("<PcGts/>")
	if err := c.Set(ctx, "doc:abc", want, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "doc:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(want) {
		t.Errorf("Get = %q, want %q", data, want)
	}

	// Expired entries are treated as misses
	if err := c.Set(ctx, "doc:old", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "doc:old")
	if hit {
		t.Error("expired entry should be a miss")
	}

	// Delete
	if err := c.Delete(ctx, "doc:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "doc:abc")
	if hit {
		t.Error("deleted entry should be a miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "doc:missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDocumentKey(t *testing.T) {
	opts := DocumentKeyOpts{
		Namespace:       "http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15",
		TextPlaceholder: "[text]",
	}

	// Deterministic
	k1 := DocumentKey("abc", opts)
	k2 := DocumentKey("abc", opts)
	if k1 != k2 {
		t.Error("DocumentKey should be deterministic")
	}

	// Input hash changes the key
	if k1 == DocumentKey("def", opts) {
		t.Error("different input hashes should produce different keys")
	}

	// Any option change changes the key
	other := opts
	other.RegionPoints = "0,0 1,0 1,1 0,1"
	if k1 == DocumentKey("abc", other) {
		t.Error("different options should produce different keys")
	}

	// Keys carry the doc prefix for backend inspection
	if k1[:4] != "doc:" {
		t.Errorf("key prefix = %q, want doc:", k1[:4])
	}
}

func TestFileCacheEntryLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "doc:layout", []byte("<PcGts/>"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// One shard directory, one entry inside it, and no temp files left over
	// from the write-then-rename.
	shards, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(shards) != 1 || !shards[0].IsDir() || len(shards[0].Name()) != 2 {
		t.Fatalf("shard layout = %v, want one two-character shard dir", shards)
	}
	entries, err := os.ReadDir(filepath.Join(dir, shards[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entry count = %d, want 1 (no temp files)", len(entries))
	}
	if name := entries[0].Name(); !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".entry-") {
		t.Errorf("entry file name = %q", name)
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "doc:pinned", []byte("x"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, err := c.Get(ctx, "doc:pinned")
	if err != nil || !hit {
		t.Fatalf("zero-TTL entry: hit=%v err=%v, want hit", hit, err)
	}
}
