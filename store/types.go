package store

import "time"

// Store the interface of a bounded key-value store holding rendered outputs
type Store interface {
	Get(key string) (value string, ok bool)
	Set(key string, value string, ttl time.Duration) error
	Del(key string) error
	Has(key string) bool
	Len() int
	Clear()
	Close() error
}

// Option the store setting
type Option struct {
	Driver   string        `json:"driver,omitempty" yaml:"driver,omitempty"` // lru (default), badger, redis
	Size     int           `json:"size,omitempty" yaml:"size,omitempty"`     // lru: the maximum entries, default 1024
	TTL      time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`       // the entries expire after this. lru: 0 never, badger and redis: default 1h
	Path     string        `json:"path,omitempty" yaml:"path,omitempty"`     // badger: the database folder, empty keeps it in memory
	Addr     string        `json:"addr,omitempty" yaml:"addr,omitempty"`     // redis: host:port
	Password string        `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int           `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string        `json:"prefix,omitempty" yaml:"prefix,omitempty"` // badger, redis: the key prefix
}
