package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// fileCache stores aggregated pages as JSON files with a per-key TTL. The TTL
// is deterministically staggered per key (base to base+30min, derived from the
// key hash) so a burst of pages cached together doesn't expire together.
type fileCache struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
}

func newFileCache(fs afero.Fs, dir string, ttl time.Duration) *fileCache {
	return &fileCache{fs: fs, dir: dir, ttl: ttl}
}

func (c *fileCache) jitteredTTL(key string) time.Duration {
	h := sha256.Sum256([]byte(key))
	n := binary.BigEndian.Uint64(h[:8])
	jitter := time.Duration(n % uint64(30*time.Minute))
	return c.ttl + jitter
}

func (c *fileCache) get(key string, v any) (bool, error) {
	if key == "" {
		return false, errors.New("empty cache key")
	}
	path := filepath.Join(c.dir, key+".json")
	fi, err := c.fs.Stat(path)
	if err != nil {
		return false, nil
	}
	if time.Since(fi.ModTime()) > c.jitteredTTL(key) {
		_ = c.fs.Remove(path)
		return false, nil
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt entry; drop it and refetch.
		_ = c.fs.Remove(path)
		return false, nil
	}
	return true, nil
}

func (c *fileCache) set(key string, v any) error {
	if key == "" {
		return errors.New("empty cache key")
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := filepath.Join(c.dir, key+".json")
	tmp := path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := c.fs.Rename(tmp, path); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return nil
}
