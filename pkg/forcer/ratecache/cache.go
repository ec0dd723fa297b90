// Package ratecache stores benchmark rates so repeated estimates of the
// same configuration skip the benchmark run. Entries expire after a TTL
// and the cache holds at most MaxEntries, dropping the oldest first.
package ratecache

import (
	"errors"
	"math"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Defaults for Options.
const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 64
)

// Options configures a Cache.
type Options struct {
	// TTL is how long an entry stays valid. Zero or less uses DefaultTTL.
	TTL time.Duration

	// MaxEntries bounds the number of stored entries. Zero or less uses
	// DefaultMaxEntries.
	MaxEntries int
}

// Cache provides rate lookups over a Store.
type Cache struct {
	store *Store
	opts  Options
	now   func() time.Time
}

// DefaultPath returns the cache directory under the XDG cache home.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "forcer", "rates")
}

// Open opens or creates a cache at the given path.
func Open(path string, opts Options) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}

	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}

	return &Cache{store: store, opts: opts, now: time.Now}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Get returns the cached rate for key. The boolean is false when there is
// no entry or it has expired.
func (c *Cache) Get(key Key) (float64, bool, error) {
	entry, err := c.store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	if c.now().Sub(entry.CreatedAt()) > c.opts.TTL {
		return 0, false, nil
	}
	if entry.Unbounded {
		return math.Inf(1), true, nil
	}
	return entry.Rate, true, nil
}

// Put stores rate for key and trims the cache to MaxEntries.
func (c *Cache) Put(key Key, rate float64) error {
	entry := &Entry{Created: c.now().UnixNano()}
	if math.IsInf(rate, 1) {
		entry.Unbounded = true
	} else {
		entry.Rate = rate
	}

	if err := c.store.Put(key, entry, c.opts.TTL); err != nil {
		return err
	}
	_, err := c.store.Trim(c.opts.MaxEntries)
	return err
}

// Len returns the number of stored entries, expired ones included until
// they are dropped.
func (c *Cache) Len() (int, error) {
	return c.store.Count()
}

// Clear removes all entries.
func (c *Cache) Clear() error {
	return c.store.DeleteAll()
}
