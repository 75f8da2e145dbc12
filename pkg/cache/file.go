package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores converted documents under a local directory, one JSON
// entry per document. It backs CLI runs, so an export converted once is
// served from disk on every later invocation until its entry expires.
//
// Entries are sharded into subdirectories by key hash so batch runs over
// large corpora do not pile thousands of files into one directory.
type FileCache struct {
	dir string
}

// NewFileCache opens a document cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// documentEntry is the on-disk form of a cached conversion.
type documentEntry struct {
	Document  []byte    `json:"document"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get loads a cached conversion. Expired and undecodable entries are
// removed and reported as misses; the conversion then simply runs again.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry documentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Document, true, nil
}

// Set stores a converted document. The entry is written to a temporary
// file and renamed into place, so a concurrent batch worker reading the
// same key never sees a half-written entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := documentEntry{
		Document: data,
		StoredAt: time.Now(),
	}
	// Only a zero TTL means no expiry; a negative one stores an entry
	// already past its deadline.
	if ttl != 0 {
		entry.ExpiresAt = entry.StoredAt.Add(ttl)
	}

	blob, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a cached conversion. Missing entries are fine.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; entries live on disk between runs.
func (c *FileCache) Close() error {
	return nil
}

// path maps a cache key to its entry file. The first two hex characters of
// the key hash pick the shard directory.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
