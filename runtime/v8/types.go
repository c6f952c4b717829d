package v8

import (
	"sync"
	"time"

	"rogchap.com/v8go"
)

// Factory create V8 contexts, each context owns its isolate
type Factory struct {
	option Option
}

// Option the V8 factory option
type Option struct {
	Timeout    time.Duration `json:"timeout,omitempty"`    // terminate a script running longer than this, default 5s
	SeedOrigin string        `json:"seedOrigin,omitempty"` // the origin of the bundle script in stack traces
}

// Context a V8 context
type Context struct {
	iso     *v8go.Isolate
	ctx     *v8go.Context
	timeout time.Duration
	mu      sync.Mutex
}
