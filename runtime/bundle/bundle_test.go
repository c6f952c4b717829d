package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yaoapp/ssr/application/disk"
	"github.com/yaoapp/ssr/resolver"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/pool"
)

type seedContext struct {
	seed string
}

func (ctx *seedContext) Execute(script string, origin string) (interface{}, error) {
	return nil, nil
}

func (ctx *seedContext) Set(name string, value interface{}) error { return nil }

func (ctx *seedContext) Get(name string) (interface{}, error) { return ctx.seed, nil }

func (ctx *seedContext) Dispose() {}

type upperTransformer struct {
	fail  bool
	calls atomic.Int32
}

func (t *upperTransformer) Transform(source string, option runtime.TransformOption) (string, error) {
	t.calls.Add(1)
	if t.fail {
		return "", runtime.ErrTransform
	}
	return strings.ToUpper(source), nil
}

func prepare(t *testing.T, files map[string]string) (*Builder, string) {
	root := t.TempDir()
	for name, content := range files {
		write(t, filepath.Join(root, name), content)
	}

	app, err := disk.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	factory := runtime.New(func(seed string) (runtime.Context, error) {
		return &seedContext{seed: seed}, nil
	})

	builder := NewBuilder(app, resolver.New(app, resolver.Option{MinimumFileSize: 1, SearchDepth: 1}), factory, pool.Option{MinSize: 1, MaxSize: 2})
	t.Cleanup(builder.Close)
	return builder, root
}

func write(t *testing.T, file string, content string) {
	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(file, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
}

func TestIncludeOrder(t *testing.T) {
	builder, _ := prepare(t, map[string]string{
		"react.js":            "var React = {};",
		"react-dom-server.js": "var ReactDOMServer = {};",
	})

	_, err := builder.Include("react", "react", IncludeOption{})
	assert.Nil(t, err)
	_, err = builder.Include("react", "react-dom-server", IncludeOption{})
	assert.Nil(t, err)

	// re-including does not reorder
	_, err = builder.Include("react", "react", IncludeOption{})
	assert.Nil(t, err)

	group, has := builder.Get("react")
	assert.True(t, has)
	assert.Equal(t, 2, group.Bundle.Len())
	assert.Equal(t, "var React = {};\n;\nvar ReactDOMServer = {};", group.Bundle.Text())
	assert.Equal(t, Hash(group.Bundle.Text()), group.Hash())
}

func TestIncludeOptional(t *testing.T) {
	builder, _ := prepare(t, map[string]string{"react.js": "var React = {};"})

	file, err := builder.Include("react", "require", IncludeOption{Optional: true})
	assert.Nil(t, err)
	assert.Nil(t, file)

	_, err = builder.Include("react", "require", IncludeOption{})
	assert.True(t, errors.Is(err, runtime.ErrResolution))
}

func TestIncludeTransform(t *testing.T) {
	builder, _ := prepare(t, map[string]string{
		"app.jsx":  "const app = 1;",
		"lib.js":   "const lib = 1;",
		"force.js": "const force = 1;",
	})

	upper := &upperTransformer{}
	builder.UseTransform(upper)

	builder.Include("page", "app.jsx", IncludeOption{})
	builder.Include("page", "lib.js", IncludeOption{})
	builder.Include("page", "force.js", IncludeOption{Transform: true})

	group, _ := builder.Get("page")
	assert.Equal(t, "CONST APP = 1;\n;\nconst lib = 1;\n;\nCONST FORCE = 1;", group.Bundle.Text())
	assert.Equal(t, int32(2), upper.calls.Load())
}

func TestIncludeTwiceLoadsOnce(t *testing.T) {
	builder, root := prepare(t, map[string]string{"app.jsx": "const app = 1;"})
	upper := &upperTransformer{}
	builder.UseTransform(upper)

	first, err := builder.Include("page", "app.jsx", IncludeOption{})
	assert.Nil(t, err)

	// the member is kept as it was included, the next refresh picks up the change
	write(t, filepath.Join(root, "app.jsx"), "const app = 1000;")
	second, err := builder.Include("page", "app.jsx", IncludeOption{})
	assert.Nil(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), upper.calls.Load())
	assert.Equal(t, "CONST APP = 1;", second.Text())
}

func TestIncludeTransformFallback(t *testing.T) {
	builder, _ := prepare(t, map[string]string{"app.jsx": "const app = 1;"})
	builder.UseTransform(&upperTransformer{fail: true})

	file, err := builder.Include("page", "app.jsx", IncludeOption{})
	assert.Nil(t, err)
	assert.Equal(t, "", file.Transformed)
	assert.Equal(t, "const app = 1;", file.Text())
}

func TestRefresh(t *testing.T) {
	builder, root := prepare(t, map[string]string{
		"a.js": "var a = 1;",
		"b.js": "var b = 2;",
	})
	builder.Include("page", "a.js", IncludeOption{})
	builder.Include("page", "b.js", IncludeOption{})
	group, _ := builder.Get("page")

	changed, err := group.Bundle.Refresh()
	assert.Nil(t, err)
	assert.False(t, changed)

	hash := group.Hash()

	// same size, not detected
	write(t, filepath.Join(root, "a.js"), "var a = 2;")
	changed, err = group.Bundle.Refresh()
	assert.Nil(t, err)
	assert.False(t, changed)

	write(t, filepath.Join(root, "a.js"), "var a = 100;")
	changed, err = group.Bundle.Refresh()
	assert.Nil(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, hash, group.Hash())
	assert.Equal(t, "var a = 100;\n;\nvar b = 2;", group.Bundle.Text())

	os.Remove(filepath.Join(root, "b.js"))
	changed, err = group.Bundle.Refresh()
	assert.Nil(t, err)
	assert.True(t, changed)
	assert.Equal(t, "var a = 100;", group.Bundle.Text())
	assert.Equal(t, 1, len(group.Bundle.Paths()))
}

func TestRefreshConcurrent(t *testing.T) {
	builder, root := prepare(t, map[string]string{
		"react.js": "var React = {};",
		"page.js":  "var Page = {};",
	})
	builder.Include("react", "react", IncludeOption{})
	builder.Include("react", "page.js", IncludeOption{})
	group, _ := builder.Get("react")

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					group.Bundle.Refresh()
					group.Bundle.Files()
				}
			}
		}()
	}

	for i := 1; i <= 50; i++ {
		write(t, filepath.Join(root, "react.js"), "var React = {v: \""+strings.Repeat("x", i)+"\"};")
	}
	close(stop)
	wg.Wait()

	// the last rewrite is seen by the next refresh at the latest
	group.Bundle.Refresh()
	last := "var React = {v: \"" + strings.Repeat("x", 50) + "\"};"
	assert.Equal(t, last+Separator+"var Page = {};", group.Bundle.Text())
	assert.Equal(t, Hash(group.Bundle.Text()), group.Hash())
}

func TestRefreshRebuildPool(t *testing.T) {
	builder, root := prepare(t, map[string]string{"a.js": "var a = 1;"})
	builder.Include("page", "a.js", IncludeOption{})
	group, _ := builder.Get("page")
	generation := group.Pool.Stats().Generation

	write(t, filepath.Join(root, "a.js"), "var a = 1000;")
	changed, _ := group.Bundle.Refresh()
	assert.True(t, changed)
	assert.Greater(t, group.Pool.Stats().Generation, generation)

	lease, err := group.Pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer lease.Release()
	seed, _ := lease.Get("seed")
	assert.Equal(t, "var a = 1000;", seed)
}

func TestGroupBases(t *testing.T) {
	builder, root := prepare(t, map[string]string{
		"react.js": "var React = {};",
		"page.js":  "var Page = {};",
	})
	builder.Include("react", "react", IncludeOption{})
	react, _ := builder.Get("react")

	page := builder.Group("page:/index", react)
	builder.Include("page:/index", "page.js", IncludeOption{})
	text, version := page.Seed()
	assert.Equal(t, "var React = {};\n;\nvar Page = {};", text)
	assert.Equal(t, react.Hash()+":"+page.Hash(), version)
	assert.Equal(t, version, page.Version())
	assert.Equal(t, []*Group{react}, page.Bases())

	generation := page.Pool.Stats().Generation
	write(t, filepath.Join(root, "react.js"), "var React = {version: 18};")
	react.Bundle.Refresh()
	assert.Greater(t, page.Pool.Stats().Generation, generation)

	builder.Remove("page:/index")
	_, has := builder.Get("page:/index")
	assert.False(t, has)

	// the removed group is no longer rebuilt with its base
	generation = page.Pool.Stats().Generation
	write(t, filepath.Join(root, "react.js"), "var React = {version: 19.1};")
	react.Bundle.Refresh()
	assert.Equal(t, generation, page.Pool.Stats().Generation)
}

func TestStandaloneBundle(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "page.hbs"), "<h1>{{title}}</h1>")
	app, err := disk.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	b := New("template", app, nil)
	calls := 0
	unhook := b.OnRebuild(func() { calls++ })

	file, err := b.Load(filepath.Join(root, "page.hbs"))
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, b.Add(&ScriptFile{Path: file.Path}))

	_, err = b.Load(filepath.Join(root, "missing.hbs"))
	assert.NotNil(t, err)
	assert.Equal(t, "<h1>{{title}}</h1>", b.Text())
	assert.Equal(t, 1, calls)

	unhook()
	write(t, filepath.Join(root, "page.hbs"), "<h1>{{title}}!</h1>")
	changed, err := b.Refresh()
	assert.Nil(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "<h1>{{title}}!</h1>", b.Files()[0].Source)

	assert.True(t, b.Remove(file.Path))
	assert.Equal(t, Hash(""), b.Hash())
}
