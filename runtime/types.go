package runtime

// Context an isolated script execution context. A context is owned by one
// caller at a time, it is not safe for concurrent use.
type Context interface {
	// Execute run the script and return the value of its last expression
	Execute(script string, origin string) (interface{}, error)

	// Set a global variable
	Set(name string, value interface{}) error

	// Get a global variable
	Get(name string) (interface{}, error)

	// Dispose release the context, it must not be used after
	Dispose()
}

// Factory create contexts seeded with a bundle text
type Factory interface {
	New(seed string) (Context, error)
}

// FactoryFunc the function adapter of Factory
type FactoryFunc func(seed string) (Context, error)

// Transformer a source to source code transformer (babel, esbuild ...)
type Transformer interface {
	Transform(source string, option TransformOption) (string, error)
}

// Renderer render a component (or a template) through a context
type Renderer interface {
	ID() string
	Render(ctx Context, name string, input string) (string, error)
}

// TransformOption the transform option
type TransformOption struct {
	Loader        string                 `json:"loader,omitempty"` // js, jsx, ts, tsx
	Minify        bool                   `json:"minify,omitempty"`
	Target        string                 `json:"target,omitempty"`
	Presets       []string               `json:"presets,omitempty"`
	Plugins       []string               `json:"plugins,omitempty"`
	ParserOptions map[string]interface{} `json:"parserOpts,omitempty"`
	Filename      string                 `json:"filename,omitempty"`
}
