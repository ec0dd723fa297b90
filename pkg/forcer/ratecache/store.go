package ratecache

import (
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// Store wraps Badger for rate entries.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates a store at the given path.
func OpenStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves an entry.
func (s *Store) Get(key Key) (*Entry, error) {
	var entry Entry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key.Bytes())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.Decode)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores an entry. A positive ttl lets Badger expire it.
func (s *Store) Put(key Key, entry *Entry, ttl time.Duration) error {
	value, err := entry.Encode()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key.Bytes(), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes an entry.
func (s *Store) Delete(key Key) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key.Bytes())
	})
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(keysOnly())
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Trim deletes the oldest entries until at most limit remain.
// It returns the number of entries deleted.
func (s *Store) Trim(limit int) (int, error) {
	type aged struct {
		key     []byte
		created int64
	}

	var deleted int
	err := s.db.Update(func(txn *badger.Txn) error {
		var all []aged

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var entry Entry
			if err := item.Value(entry.Decode); err != nil {
				it.Close()
				return err
			}
			all = append(all, aged{key: item.KeyCopy(nil), created: entry.Created})
		}
		it.Close()

		if len(all) <= limit {
			return nil
		}

		sort.Slice(all, func(i, j int) bool { return all[i].created < all[j].created })
		for _, a := range all[:len(all)-limit] {
			if err := txn.Delete(a.key); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// DeleteAll removes every entry.
func (s *Store) DeleteAll() error {
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(keysOnly())
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

func keysOnly() badger.IteratorOptions {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	return opts
}
