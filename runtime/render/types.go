package render

import (
	"sync/atomic"
	"time"

	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/bundle"
	"github.com/yaoapp/ssr/store"
	"golang.org/x/sync/singleflight"
)

// Flag a sticky changed marker, set by the watcher and taken by the next render
type Flag struct {
	value atomic.Bool
}

// Orchestrator render through the pooled contexts and cache the outputs
type Orchestrator struct {
	store  store.Store
	option Option
	flight singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option the orchestrator option
type Option struct {
	TTL   time.Duration `json:"ttl,omitempty"`   // the cached outputs expire after this, 0 never
	Debug bool          `json:"debug,omitempty"` // print the render errors with the stack
}

// Request a render request
type Request struct {
	Name     string            // the component name or the template name
	Input    string            // the serialized props
	Group    *bundle.Group     // the group providing the contexts
	Deps     []string          // the hashes of the other bundles the output depends on
	Flag     *Flag             // the page changed flag, optional
	Renderer runtime.Renderer
}

// Stats the orchestrator statistics
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}

// React render a React component with ReactDOMServer
type React struct {
	Static bool // renderToStaticMarkup instead of renderToString
}

// Framework the template framework
type Framework string

// the template frameworks
const (
	Handlebars Framework = "handlebars"
	Hogan      Framework = "hogan"
	Mustache   Framework = "mustache"
	Underscore Framework = "underscore"
	DoT        Framework = "dot"
	EJS        Framework = "ejs"
	Dust       Framework = "dust"
)

// Template render a template with a template framework
type Template struct {
	Framework Framework
	Source    func() string
}

// Document assemble a single page application document
type Document struct {
	Title    string
	Metadata []string
	Styles   []string
	Scripts  []string
	RootID   string
}
