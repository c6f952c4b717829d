package watch

import (
	"context"
	"sync"
	"time"

	"github.com/yaoapp/ssr/application"
)

// Target a tracked resource polled by the watcher
type Target interface {
	// Refresh re-stat the tracked files, returns true if anything changed
	Refresh() (bool, error)

	// Paths the tracked files
	Paths() []string
}

// Status the watcher status
type Status string

// the watcher status
const (
	StatusStopped  Status = "stopped"
	StatusRunning  Status = "running"
	StatusDegraded Status = "degraded"
)

// Option the watcher option
type Option struct {
	Interval   time.Duration `json:"interval,omitempty"`   // the poll interval, default 500ms
	MaxBackoff time.Duration `json:"maxBackoff,omitempty"` // the maximum delay after failures, default 30s
	Notify     bool          `json:"notify,omitempty"`     // wake the poller on the filesystem events
}

// Health the watcher health report
type Health struct {
	Status    Status    `json:"status"`
	LastTick  time.Time `json:"lastTick"`
	LastError string    `json:"lastError,omitempty"`
	Failures  int       `json:"failures"`
	Restarts  int       `json:"restarts"`
	Ticks     uint64    `json:"ticks"`
}

// Watcher poll the targets of a page in a supervised goroutine
type Watcher struct {
	name     string
	app      application.Application
	option   Option
	onChange func()
	mu       sync.Mutex
	targets  []Target
	health   Health
	cancel   context.CancelFunc
	done     chan struct{}
	wake     chan struct{}
	notify   chan uint8
	dirs     string
}
