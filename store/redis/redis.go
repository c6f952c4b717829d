package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yaoapp/kun/log"
)

// New create a new redis store
func New(option Option) (*Store, error) {
	if option.Addr == "" {
		return nil, fmt.Errorf("the redis addr is required")
	}

	if option.Timeout == 0 {
		option.Timeout = 3 * time.Second
	}

	if option.Prefix == "" {
		option.Prefix = "ssr:"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        option.Addr,
		Password:    option.Password,
		DB:          option.DB,
		DialTimeout: option.Timeout,
		ReadTimeout: option.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), option.Timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s %s", option.Addr, err.Error())
	}

	return &Store{rdb: rdb, Option: option}, nil
}

// Get looks up a key's value from the store.
func (store *Store) Get(key string) (value string, ok bool) {
	key = store.Option.Prefix + key
	val, err := store.rdb.Get(context.Background(), key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Error("Store redis Get %s: %s", key, err.Error())
		}
		return "", false
	}
	return val, true
}

// Set adds a value to the store.
func (store *Store) Set(key string, value string, ttl time.Duration) error {
	key = store.Option.Prefix + key
	err := store.rdb.Set(context.Background(), key, value, ttl).Err()
	if err != nil {
		log.Error("Store redis Set %s: %s", key, err.Error())
		return err
	}
	return nil
}

// Del remove is used to purge a key from the store
func (store *Store) Del(key string) error {
	return store.rdb.Del(context.Background(), store.Option.Prefix+key).Err()
}

// Has check if the store is exist
func (store *Store) Has(key string) bool {
	v, _ := store.rdb.Exists(context.Background(), store.Option.Prefix+key).Result()
	return v == 1
}

// Len returns the number of stored entries (**not O(1)**)
func (store *Store) Len() int {
	return len(store.keys())
}

// Clear remove the keys with the store prefix
func (store *Store) Clear() {
	keys := store.keys()
	if len(keys) == 0 {
		return
	}
	if err := store.rdb.Del(context.Background(), keys...).Err(); err != nil {
		log.Error("Store redis Clear: %s", err.Error())
	}
}

// Close the client
func (store *Store) Close() error {
	return store.rdb.Close()
}

func (store *Store) keys() []string {
	keys := []string{}
	iter := store.rdb.Scan(context.Background(), 0, store.Option.Prefix+"*", 100).Iterator()
	for iter.Next(context.Background()) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Error("Store redis Keys: %s", err.Error())
	}
	return keys
}
