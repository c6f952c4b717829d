package lru

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Cache lru cache
type Cache struct {
	size int
	lru  *lru.ARCCache
}

type item struct {
	value   string
	expires time.Time
}
