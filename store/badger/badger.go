package badger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Badger the badger store
type Badger struct {
	db     *badger.DB
	path   string
	prefix string
	mu     sync.RWMutex
}

// New create a new badger store, an empty path keeps the database in memory
func New(path string, prefix string) (*Badger, error) {

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %v", path, err)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %v", err)
	}

	return &Badger{db: db, path: path, prefix: prefix}, nil
}

// Close close the badger database
func (b *Badger) Close() error {
	return b.db.Close()
}

// Get get a value by key
func (b *Badger) Get(key string) (value string, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			value = string(val)
			ok = true
			return nil
		})
	})

	if err != nil {
		return "", false
	}

	return value, ok
}

// Set set a key-value pair with optional TTL
func (b *Badger) Set(key string, value string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(b.key(key), []byte(value))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Del delete a key
func (b *Badger) Del(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
}

// Has check if a key exists
func (b *Badger) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var exists bool
	b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(b.key(key))
		exists = (err == nil)
		return nil
	})
	return exists
}

// Len get the number of keys in the store
func (b *Badger) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(b.prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Clear remove all keys with the store prefix
func (b *Badger) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.prefix == "" {
		b.db.DropAll()
		return
	}
	b.db.DropPrefix([]byte(b.prefix))
}

func (b *Badger) key(key string) []byte {
	return []byte(b.prefix + key)
}
