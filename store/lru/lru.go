package lru

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// New create a new LRU cache
func New(size int) (*Cache, error) {
	cache := &Cache{size: size}
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	cache.lru = arc
	return cache, nil
}

// Get looks up a key's value from the cache.
func (cache *Cache) Get(key string) (value string, ok bool) {
	v, ok := cache.lru.Get(key)
	if !ok {
		return "", false
	}

	it := v.(item)
	if !it.expires.IsZero() && time.Now().After(it.expires) {
		cache.lru.Remove(key)
		return "", false
	}
	return it.value, true
}

// Set adds a value to the cache.
func (cache *Cache) Set(key string, value string, ttl time.Duration) error {
	it := item{value: value}
	if ttl > 0 {
		it.expires = time.Now().Add(ttl)
	}
	cache.lru.Add(key, it)
	return nil
}

// Del remove is used to purge a key from the cache
func (cache *Cache) Del(key string) error {
	cache.lru.Remove(key)
	return nil
}

// Has check if the cache is exist ( without updating recency or frequency )
func (cache *Cache) Has(key string) bool {
	v, has := cache.lru.Peek(key)
	if !has {
		return false
	}
	it := v.(item)
	return it.expires.IsZero() || time.Now().Before(it.expires)
}

// Len returns the number of cached entries
func (cache *Cache) Len() int {
	return cache.lru.Len()
}

// Size the maximum number of entries
func (cache *Cache) Size() int {
	return cache.size
}

// Clear is used to clear the cache
func (cache *Cache) Clear() {
	cache.lru.Purge()
}

// Close the cache
func (cache *Cache) Close() error {
	cache.lru.Purge()
	return nil
}
