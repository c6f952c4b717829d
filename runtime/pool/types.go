package pool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/yaoapp/ssr/runtime"
)

// Seed return the text the new contexts start with and the version of that text
type Seed func() (text string, version string)

// Pool a pool of reusable execution contexts seeded with the same bundle
type Pool struct {
	name       string
	factory    runtime.Factory
	seed       Seed
	option     Option
	mu         sync.Mutex
	idle       []*entry
	leased     int
	generation uint64
	closed     bool
	created    atomic.Uint64
	disposed   atomic.Uint64
	done       chan struct{}
	stopped    sync.WaitGroup
}

// Lease a context borrowed from the pool
type Lease struct {
	runtime.Context
	pool     *Pool
	entry    *entry
	released bool
	mu       sync.Mutex
}

// Option the pool option
type Option struct {
	MinSize        int           `json:"minSize,omitempty"`        // the idle contexts kept alive, default 1
	MaxSize        int           `json:"maxSize,omitempty"`        // the maximum idle contexts, default 100
	IdleTTL        time.Duration `json:"idleTTL,omitempty"`        // evict idle contexts older than this, default 60s
	AcquireTimeout time.Duration `json:"acquireTimeout,omitempty"` // the context creation timeout, default 5s
}

// Stats the pool statistics
type Stats struct {
	Idle       int    `json:"idle"`
	Leased     int    `json:"leased"`
	Created    uint64 `json:"created"`
	Disposed   uint64 `json:"disposed"`
	Generation uint64 `json:"generation"`
}

type entry struct {
	id         string
	ctx        runtime.Context
	generation uint64
	version    string
	lastUsed   time.Time
}
