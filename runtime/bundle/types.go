package bundle

import (
	"sync"

	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/resolver"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/pool"
)

// Separator the statement separator between the bundle members
const Separator = "\n;\n"

// ScriptFile a tracked script file
type ScriptFile struct {
	Path          string `json:"path"`
	Source        string `json:"-"`
	Transformed   string `json:"-"`
	Size          int64  `json:"size"`
	Transformable bool   `json:"transformable"`
}

// Loader read (and transform) the file content into the ScriptFile
type Loader func(file *ScriptFile) error

// Bundle an ordered list of script files and their concatenated text
type Bundle struct {
	name    string
	app     application.Application
	loader  Loader
	mu      sync.RWMutex
	refresh sync.Mutex
	files   []*ScriptFile
	text    string
	hash    string
	hooks   map[int]func()
	nextID  int
}

// Group a bundle and the pool of contexts seeded with it
type Group struct {
	Name   string
	Bundle *Bundle
	Pool   *pool.Pool
	bases  []*Group
	unhook []func()
}

// Builder build the groups from the resolved script files
type Builder struct {
	app         application.Application
	resolver    *resolver.Resolver
	factory     runtime.Factory
	option      pool.Option
	transformer runtime.Transformer
	mu          sync.RWMutex
	groups      map[string]*Group
}

// IncludeOption the include option
type IncludeOption struct {
	Transform bool `json:"transform,omitempty"` // transform the file even if its extension is not jsx, ts or tsx
	Optional  bool `json:"optional,omitempty"`  // ignore the resolution failure
}
