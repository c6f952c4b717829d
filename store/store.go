package store

import (
	"fmt"
	"time"

	"github.com/yaoapp/ssr/store/badger"
	"github.com/yaoapp/ssr/store/lru"
	"github.com/yaoapp/ssr/store/redis"
)

// DefaultTTL the expiration of the badger and redis entries when no TTL is set
const DefaultTTL = time.Hour

// expiring bound a store with no size limit by the time, the entries set
// without a TTL expire after the default one
type expiring struct {
	Store
	ttl time.Duration
}

// New create a store. The lru store is bounded by the size, the badger and
// redis stores by the TTL.
func New(option Option) (Store, error) {
	ttl := option.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch option.Driver {
	case "", "lru":
		size := option.Size
		if size <= 0 {
			size = 1024
		}
		return lru.New(size)

	case "badger":
		kv, err := badger.New(option.Path, option.Prefix)
		if err != nil {
			return nil, err
		}
		return expiring{Store: kv, ttl: ttl}, nil

	case "redis":
		kv, err := redis.New(redis.Option{
			Addr:     option.Addr,
			Password: option.Password,
			DB:       option.DB,
			Prefix:   option.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return expiring{Store: kv, ttl: ttl}, nil
	}

	return nil, fmt.Errorf("the store driver %s does not support", option.Driver)
}

// Set the value, a zero ttl uses the store one
func (s expiring) Set(key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.Store.Set(key, value, ttl)
}
