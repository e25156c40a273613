package internal

import (
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	tt "github.com/gnolang/mtlin/internal/types"
)

const (
	cacheFileName = "lint_cache.msgpack"
	// cacheVersion is bumped whenever Issue changes shape.
	cacheVersion = 1

	DefaultCacheMaxAge = 24 * time.Hour
)

type CacheEntry struct {
	Hash         string     `msgpack:"hash"`
	RuleSet      string     `msgpack:"rules"`
	Issues       []tt.Issue `msgpack:"issues"`
	CreatedAt    time.Time  `msgpack:"created_at"`
	LastAccessed time.Time  `msgpack:"last_accessed"`
}

type cacheFile struct {
	Version int                   `msgpack:"version"`
	Entries map[string]CacheEntry `msgpack:"entries"`
}

// Cache stores the issues of each linted file, keyed by file name and
// validated against the file's content hash and the active rule set.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.RWMutex
	maxAge   time.Duration
	now      func() time.Time
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   DefaultCacheMaxAge,
		now:      time.Now,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil // cache file doesn't exist yet. This is fine.
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}

	var file cacheFile
	if err := msgpack.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	if file.Version != cacheVersion {
		// stale layout, start over
		return nil
	}
	if file.Entries != nil {
		c.entries = file.Entries
	}
	return nil
}

// save must be called with the mutex held.
func (c *Cache) save() error {
	data, err := msgpack.Marshal(cacheFile{Version: cacheVersion, Entries: c.entries})
	if err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	tmp, err := os.CreateTemp(c.CacheDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp.Name(), c.path())
}

func (c *Cache) Set(filename string, source []byte, ruleSet string, issues []tt.Issue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	c.entries[filename] = CacheEntry{
		Hash:         contentHash(source),
		RuleSet:      ruleSet,
		Issues:       issues,
		CreatedAt:    now,
		LastAccessed: now,
	}

	return c.save()
}

func (c *Cache) Get(filename string, source []byte, ruleSet string) ([]tt.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(entry, source, ruleSet) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = c.now()
	c.entries[filename] = entry

	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(entry CacheEntry, source []byte, ruleSet string) bool {
	// too old
	if c.maxAge > 0 && c.now().Sub(entry.CreatedAt) > c.maxAge {
		return true
	}
	if entry.RuleSet != ruleSet {
		return true
	}
	return entry.Hash != contentHash(source)
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	return c.save()
}

func contentHash(source []byte) string {
	return fmt.Sprintf("%x", md5.Sum(source))
}
