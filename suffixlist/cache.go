package suffixlist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"github.com/john-kurkowski/tldextract/log"
)

// cacheFileExt is distinctive so Clear can't wipe unrelated files
// from a misconfigured cache dir.
const (
	cacheFileExt       = ".tldextract.json"
	lockFileExt        = ".lock"
	lockRetryDelay     = 100 * time.Millisecond
	defaultLockTimeout = 20 * time.Second
)

var (
	// ErrCacheMiss is returned if no entry exists for a key
	ErrCacheMiss = errors.New("no cache entry")

	// ErrLockTimeout is returned if the cache lock can't be acquired
	// in time. The lock of a crashed process is not detected; clearing
	// the cache dir is the manual recovery.
	ErrLockTimeout = errors.New("timeout acquiring cache lock")
)

// Entry is one cached suffix list, sufficient to rebuild a RuleSet
// without re-fetching.
type Entry struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Source    string    `json:"source"`
	RuleText  string    `json:"ruleText"`
}

// DiskCache stores suffix list data on disk, keyed by the configured
// source list. It is the only shared mutable state of this package:
// all read-check/fetch/write sequences go through WithLock.
type DiskCache struct {
	cacheDir    string
	lockTimeout time.Duration
}

// NewDiskCache creates a cache below dir. An empty dir disables the
// cache.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{
		cacheDir:    dir,
		lockTimeout: defaultLockTimeout,
	}
}

// Enabled returns false if caching is disabled.
func (c *DiskCache) Enabled() bool {
	return c.cacheDir != ""
}

// Key computes the stable cache key for an ordered source list.
func (c *DiskCache) Key(sources []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sources, "\n")))

	return hex.EncodeToString(sum[:16])
}

// Get retrieves the entry for a key, or ErrCacheMiss.
func (c *DiskCache) Get(key string) (*Entry, error) {
	if !c.Enabled() {
		return nil, ErrCacheMiss
	}

	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			cacheLogger().WithField("key", key).Warn("can't read cache entry: ", err)
		}

		return nil, ErrCacheMiss
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		cacheLogger().WithField("key", key).Warn("corrupt cache entry, ignoring: ", err)

		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Put stores an entry, overwriting an existing one.
func (c *DiskCache) Put(key string, entry *Entry) error {
	if !c.Enabled() {
		return nil
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return fmt.Errorf("can't create cache dir: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("can't encode cache entry: %w", err)
	}

	if err := os.WriteFile(c.entryPath(key), data, 0o644); err != nil {
		return fmt.Errorf("can't write cache entry: %w", err)
	}

	return nil
}

// Clear removes all cache entries and their lock files.
func (c *DiskCache) Clear() error {
	if !c.Enabled() {
		return nil
	}

	return filepath.Walk(c.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}

		if info.IsDir() {
			return nil
		}

		if strings.HasSuffix(path, cacheFileExt) || strings.HasSuffix(path, cacheFileExt+lockFileExt) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
		}

		return nil
	})
}

// WithLock runs fn while holding an exclusive file lock for the key,
// released on every exit path. Competing callers block up to the lock
// timeout; hitting it surfaces ErrLockTimeout.
func (c *DiskCache) WithLock(key string, fn func() error) error {
	if !c.Enabled() {
		return fn()
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		// a read-only cache location degrades to uncached operation
		cacheLogger().Warn("can't create cache dir, continuing without cache lock: ", err)

		return fn()
	}

	fileLock := flock.New(c.entryPath(key) + lockFileExt)

	ctx, cancel := context.WithTimeout(context.Background(), c.lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return ErrLockTimeout
	}

	defer func() {
		if err := fileLock.Unlock(); err != nil {
			cacheLogger().Warn("can't release cache lock: ", err)
		}
	}()

	return fn()
}

func (c *DiskCache) entryPath(key string) string {
	return filepath.Join(c.cacheDir, key+cacheFileExt)
}

func cacheLogger() *logrus.Entry {
	return log.PrefixedLog("disk_cache")
}
