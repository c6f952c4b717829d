package ssr

import (
	"fmt"
	"strings"

	"github.com/yaoapp/kun/log"
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

// the script groups
const (
	GroupReact = "react"
	GroupBabel = "babel"
)

// New create an engine. The react and react-dom-server scripts are mandatory,
// require is included when it is found.
func New(option Option, app application.Application, factory runtime.Factory) (*Engine, error) {

	err := option.Validate()
	if err != nil {
		return nil, err
	}

	kv, err := store.New(option.store())
	if err != nil {
		return nil, fmt.Errorf("[Engine] render cache: %s", err.Error())
	}

	r := resolver.New(app, resolver.Option{
		Base:            option.Base,
		SearchDepth:     option.SearchDepth,
		MinimumFileSize: option.MinimumFileSizeBytes,
	})

	engine := &Engine{
		option:   option,
		app:      app,
		resolver: r,
		builder:  bundle.NewBuilder(app, r, factory, option.pool()),
		store:    kv,
		pages:    map[string]*Page{},
		orchestrator: render.New(kv, render.Option{
			TTL:   option.store().TTL,
			Debug: option.Debug,
		}),
	}

	err = engine.useTransformer()
	if err != nil {
		engine.Close()
		return nil, err
	}

	for _, name := range []string{"react", "react-dom-server"} {
		_, err := engine.builder.Include(GroupReact, name, bundle.IncludeOption{})
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("[Engine] the mandatory script %s: %w", name, err)
		}
	}

	_, err = engine.builder.Include(GroupReact, "require", bundle.IncludeOption{Optional: true})
	if err != nil {
		engine.Close()
		return nil, err
	}

	engine.react, _ = engine.builder.Get(GroupReact)
	err = engine.react.Pool.Warm()
	if err != nil {
		log.Warn("[Engine] warm %s: %s", GroupReact, err.Error())
	}

	log.Info("[Engine] ready. transformer:%s render cache:%s", option.Transformer, option.RenderCache.Driver)
	return engine, nil
}

// Page register a react page rendering the component, the defaults are the
// props used when the render input is null. A registered path is replaced.
func (engine *Engine) Page(path string, component string, defaults props.Value) (*Page, error) {
	if component == "" {
		return nil, fmt.Errorf("[Engine] %s the component is required", path)
	}

	page := engine.newPage(path, component, defaults, engine.react)
	page.renderer = render.React{}
	page.watcher = watch.New(path, engine.app, engine.option.watch(), page.flag.Set, engine.react.Bundle, page.group.Bundle)
	page.follow(engine.react.Bundle, page.group.Bundle)
	engine.register(page)
	return page, nil
}

// TemplatePage register a page rendering the template file with the framework
// (handlebars, hogan, mustache, underscore, dot, ejs or dust)
func (engine *Engine) TemplatePage(path string, file string, framework string, defaults props.Value) (*Page, error) {

	fw, err := render.ParseFramework(framework)
	if err != nil {
		return nil, err
	}

	name := "template:" + string(fw)
	_, err = engine.builder.Include(name, render.Assets[fw], bundle.IncludeOption{})
	if err != nil {
		return nil, fmt.Errorf("[Engine] %s the %s script: %w", path, fw, err)
	}
	base, _ := engine.builder.Get(name)

	filename, err := engine.resolver.Find(file, resolver.Any)
	if err != nil {
		return nil, err
	}

	tpl := bundle.New("template:"+path, engine.app, nil)
	_, err = tpl.Load(filename)
	if err != nil {
		return nil, err
	}

	page := engine.newPage(path, filename, defaults, base)
	page.template = tpl
	page.renderer = render.Template{Framework: fw, Source: tpl.Text}
	page.watcher = watch.New(path, engine.app, engine.option.watch(), page.flag.Set, base.Bundle, page.group.Bundle, tpl)
	page.follow(base.Bundle, page.group.Bundle, tpl)
	engine.register(page)
	return page, nil
}

// Get the page
func (engine *Engine) Get(path string) (*Page, bool) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	page, has := engine.pages[path]
	return page, has
}

// Pages the registered paths
func (engine *Engine) Pages() []string {
	engine.mu.RLock()
	defer engine.mu.RUnlock()
	paths := make([]string, 0, len(engine.pages))
	for path := range engine.pages {
		paths = append(paths, path)
	}
	return paths
}

// Remove close the page and forget it
func (engine *Engine) Remove(path string) {
	engine.mu.Lock()
	page, has := engine.pages[path]
	delete(engine.pages, path)
	engine.mu.Unlock()

	if has {
		page.Close()
	}
}

// Stats the render cache statistics
func (engine *Engine) Stats() render.Stats {
	return engine.orchestrator.Stats()
}

// ClearCache remove the rendered outputs and the transformed sources, the
// next renders run the scripts again
func (engine *Engine) ClearCache() {
	engine.orchestrator.Clear()
	if engine.transform != nil {
		engine.transform.Purge()
	}
	log.Info("[Engine] the render cache was cleared")
}

// Close all the pages, the pools and the render cache
func (engine *Engine) Close() {
	engine.mu.Lock()
	pages := engine.pages
	engine.pages = map[string]*Page{}
	engine.mu.Unlock()

	for _, page := range pages {
		page.Close()
	}

	engine.builder.Close()
	if err := engine.store.Close(); err != nil {
		log.Error("[Engine] close the render cache: %s", err.Error())
	}
}

func (engine *Engine) useTransformer() error {
	var transformer runtime.Transformer
	switch engine.option.Transformer {
	case "babel":
		file, err := engine.builder.Include(GroupBabel, "babel", bundle.IncludeOption{Optional: true})
		if err != nil {
			return err
		}
		if file == nil {
			log.Warn("[Engine] babel was not found, the scripts requiring a transform will run as they are")
			return nil
		}
		group, _ := engine.builder.Get(GroupBabel)
		transformer = transform.NewScript(group.Pool)

	default:
		transformer = transform.NewESBuild(engine.option.Target)
	}

	cache, err := transform.NewCache(transformer, engine.app, engine.option.TransformCacheSize, runtime.TransformOption{
		Target: engine.option.Target,
		Minify: engine.option.Minify,
	})
	if err != nil {
		return err
	}

	engine.transform = cache
	engine.builder.UseTransform(cache)
	return nil
}

func (engine *Engine) newPage(path string, component string, defaults props.Value, base *bundle.Group) *Page {
	name := "page:" + path
	engine.builder.Remove(name)
	return &Page{
		engine:    engine,
		path:      path,
		component: component,
		defaults:  defaults,
		group:     engine.builder.Group(name, base),
		metadata:  []string{},
		styles:    []string{},
		clients:   []clientScript{},
		react:     true,
		jquery:    true,
	}
}

func (engine *Engine) register(page *Page) {
	engine.mu.Lock()
	old, has := engine.pages[page.path]
	engine.pages[page.path] = page
	engine.mu.Unlock()

	if has {
		old.Close()
	}
	page.watcher.Start()
	log.Trace("[Engine] %s registered. %s", page.path, strings.TrimPrefix(page.renderer.ID(), "template:"))
}
