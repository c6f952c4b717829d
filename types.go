package ssr

import (
	"sync"

	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/props"
	"github.com/yaoapp/ssr/resolver"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/bundle"
	"github.com/yaoapp/ssr/runtime/render"
	"github.com/yaoapp/ssr/runtime/transform"
	"github.com/yaoapp/ssr/runtime/watch"
	"github.com/yaoapp/ssr/store"
)

// Engine the page registry, it owns the shared script groups and the render cache
type Engine struct {
	option       Option
	app          application.Application
	resolver     *resolver.Resolver
	builder      *bundle.Builder
	transform    *transform.Cache
	store        store.Store
	orchestrator *render.Orchestrator
	react        *bundle.Group
	mu           sync.RWMutex
	pages        map[string]*Page
}

// Page a server-side rendered page
type Page struct {
	engine    *Engine
	path      string
	component string
	defaults  props.Value
	group     *bundle.Group
	template  *bundle.Bundle
	renderer  runtime.Renderer
	flag      render.Flag
	watcher   *watch.Watcher
	mu        sync.RWMutex
	spa       bool
	title     string
	metadata  []string
	styles    []string
	client    *bundle.Bundle
	clients   []clientScript
	react     bool
	jquery    bool
	unhook    []func()
	last      string
}

// the client scripts linked by IncludeReact and IncludeJQuery
var (
	ReactScripts = []string{
		"https://unpkg.com/react@18/umd/react.production.min.js",
		"https://unpkg.com/react-dom@18/umd/react-dom.production.min.js",
		"https://unpkg.com/@babel/standalone@7/babel.min.js",
	}
	JQueryScript = "https://code.jquery.com/jquery-3.7.1.min.js"
)

type clientScript struct {
	url  string
	path string
	typ  string
}

// Option the engine option, the durations are in milliseconds
type Option struct {
	MinPoolSize            int         `json:"minPoolSize,omitempty" yaml:"minPoolSize,omitempty"`                       // default 1
	MaxPoolSize            int         `json:"maxPoolSize,omitempty" yaml:"maxPoolSize,omitempty"`                       // default 100
	PoolIdleTTL            int         `json:"poolIdleTTL,omitempty" yaml:"poolIdleTTL,omitempty"`                       // default 60000
	AcquireTimeout         int         `json:"acquireTimeout,omitempty" yaml:"acquireTimeout,omitempty"`                 // default 5000
	ScriptReloadIntervalMs int         `json:"scriptReloadIntervalMs,omitempty" yaml:"scriptReloadIntervalMs,omitempty"` // default 500
	MaxBackoff             int         `json:"maxBackoff,omitempty" yaml:"maxBackoff,omitempty"`                         // default 30000
	SearchDepth            int         `json:"searchDepth,omitempty" yaml:"searchDepth,omitempty"`                       // default 3
	MinimumFileSizeBytes   int64       `json:"minimumFileSizeBytes,omitempty" yaml:"minimumFileSizeBytes,omitempty"`     // default 10
	Base                   string      `json:"base,omitempty" yaml:"base,omitempty"`                                     // default the application root
	Transformer            string      `json:"transformer,omitempty" yaml:"transformer,omitempty"`                       // esbuild (default) or babel
	Target                 string      `json:"target,omitempty" yaml:"target,omitempty"`                                 // default es2015
	Minify                 bool        `json:"minify,omitempty" yaml:"minify,omitempty"`
	RenderCache            CacheOption `json:"renderCache,omitempty" yaml:"renderCache,omitempty"`
	TransformCacheSize     int         `json:"transformCacheSize,omitempty" yaml:"transformCacheSize,omitempty"` // default 512
	Notify                 bool        `json:"notify,omitempty" yaml:"notify,omitempty"`
	RootID                 string      `json:"rootId,omitempty" yaml:"rootId,omitempty"`           // default rootComponent
	ExecTimeout            int         `json:"execTimeout,omitempty" yaml:"execTimeout,omitempty"` // default 5000
	Debug                  bool        `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// CacheOption the render cache option
type CacheOption struct {
	Driver   string `json:"driver,omitempty" yaml:"driver,omitempty"` // lru (default), badger, redis
	Size     int    `json:"size,omitempty" yaml:"size,omitempty"`     // default 1024
	TTL      int    `json:"ttl,omitempty" yaml:"ttl,omitempty"`       // seconds. lru: 0 never expires, badger and redis: default 3600
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}
