package ssr

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/props"
	"github.com/yaoapp/ssr/resolver"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/bundle"
	"github.com/yaoapp/ssr/runtime/render"
	"github.com/yaoapp/ssr/runtime/transform"
	"github.com/yaoapp/ssr/runtime/watch"
)

// Path the page path
func (page *Page) Path() string {
	return page.path
}

// IncludeScript include a server-side script, the script is tracked by the page watcher
func (page *Page) IncludeScript(name string) error {
	_, err := page.engine.builder.Include(page.group.Name, name, bundle.IncludeOption{})
	return err
}

// IncludeClientScript add a script tag to the single page application. A url
// is linked, a local file is inlined and tracked by the page watcher. The type
// sets the script type attribute (text/<type>).
func (page *Page) IncludeClientScript(name string, typ string) error {

	script := clientScript{typ: typ}
	if resolver.IsURL(name) {
		script.url = name
	} else {
		path, err := page.engine.resolver.Resolve(name)
		if err != nil {
			return err
		}

		page.mu.Lock()
		if page.client == nil {
			page.client = page.engine.builder.Bundle("client:" + page.path)
			page.watcher.Add(page.client)
		}
		client := page.client
		page.mu.Unlock()

		if !client.Has(path) {
			_, err = client.Load(path)
			if err != nil {
				return err
			}
		}
		script.path = path
	}

	page.mu.Lock()
	defer page.mu.Unlock()
	for _, s := range page.clients {
		if s == script {
			return nil
		}
	}
	page.clients = append(page.clients, script)
	return nil
}

// IncludeReact link the client react, react-dom and babel scripts to the single
// page application, default true. With babel in the browser the local jsx, ts
// and tsx client scripts are inlined as they are, with the text/babel type.
func (page *Page) IncludeReact(include bool) {
	page.mu.Lock()
	defer page.mu.Unlock()
	page.react = include
}

// IncludeJQuery link the client jquery script to the single page application, default true
func (page *Page) IncludeJQuery(include bool) {
	page.mu.Lock()
	defer page.mu.Unlock()
	page.jquery = include
}

// IncludeCSS add a style sheet. A local file is inlined (minified), any other name is linked.
func (page *Page) IncludeCSS(name string) {

	tag := fmt.Sprintf(`<link rel="stylesheet" href="%s">`, name)
	if !resolver.IsURL(name) {
		if file, err := page.engine.resolver.Find(name, resolver.Styles); err == nil {
			tag = page.style(file, tag)
		}
	}

	page.mu.Lock()
	defer page.mu.Unlock()
	page.styles = appendOnce(page.styles, tag)
}

// AddMeta add a meta tag (description, theme-color, viewport ...)
func (page *Page) AddMeta(name string, content string) {
	page.mu.Lock()
	defer page.mu.Unlock()
	page.metadata = appendOnce(page.metadata, fmt.Sprintf(`<meta name="%s" content="%s">`, html.EscapeString(name), html.EscapeString(content)))
}

// Charset add a charset meta tag
func (page *Page) Charset(charset string) {
	page.mu.Lock()
	defer page.mu.Unlock()
	page.metadata = appendOnce(page.metadata, fmt.Sprintf(`<meta charset="%s">`, html.EscapeString(charset)))
}

// SetTitle set the document title
func (page *Page) SetTitle(title string) {
	page.mu.Lock()
	defer page.mu.Unlock()
	page.title = html.EscapeString(title)
}

// SetSPA render the react page as a single page application document
func (page *Page) SetSPA(spa bool) {
	page.mu.Lock()
	defer page.mu.Unlock()
	page.spa = spa
}

// Changed check if a change was detected since the last render
func (page *Page) Changed() bool {
	return page.flag.IsSet()
}

// Health the page watcher health
func (page *Page) Health() watch.Health {
	return page.watcher.Health()
}

// Render the page with the input props, a null input uses the defaults. The
// returned html is always servable: when the render fails it is the last good
// output or an error payload, and the error is returned along with it.
func (page *Page) Render(ctx context.Context, input props.Value) (string, error) {

	if input.IsNull() {
		input = page.defaults
	}
	data := input.JSON()

	req := render.Request{
		Name:     page.component,
		Input:    data,
		Group:    page.group,
		Flag:     &page.flag,
		Renderer: page.renderer,
	}
	if page.template != nil {
		req.Deps = []string{page.template.Hash()}
	}

	output, err := page.engine.orchestrator.Render(ctx, req)
	if err != nil {
		log.Error("[Engine] %s %s", page.path, err.Error())
		page.mu.RLock()
		last := page.last
		page.mu.RUnlock()
		if last != "" {
			return last, err
		}
		return fmt.Sprintf(`<div class="ssr-error">%s</div>`, html.EscapeString(err.Error())), err
	}

	page.mu.Lock()
	defer page.mu.Unlock()
	if page.spa && page.template == nil {
		output = render.Document{
			Title:    page.title,
			Metadata: page.metadata,
			Styles:   page.styles,
			Scripts:  page.scripts(),
			RootID:   page.engine.option.RootID,
		}.Render(page.component, data, output)
	}
	page.last = output
	return output, nil
}

// Close stop the watcher and release the contexts
func (page *Page) Close() {
	page.watcher.Stop()
	page.mu.Lock()
	for _, unhook := range page.unhook {
		unhook()
	}
	page.unhook = nil
	page.mu.Unlock()
	if group, has := page.engine.builder.Get(page.group.Name); has && group == page.group {
		page.engine.builder.Remove(page.group.Name)
	}
}

// follow set the page flag when any of the bundles changes, whoever refreshed it
func (page *Page) follow(bundles ...*bundle.Bundle) {
	page.mu.Lock()
	defer page.mu.Unlock()
	for _, b := range bundles {
		page.unhook = append(page.unhook, b.OnRebuild(page.flag.Set))
	}
}

// scripts the client script tags, the caller must hold the lock
func (page *Page) scripts() []string {
	tags := []string{}
	if page.react {
		for _, src := range ReactScripts {
			tags = append(tags, fmt.Sprintf(`<script src="%s"></script>`, src))
		}
	}
	if page.jquery {
		tags = append(tags, fmt.Sprintf(`<script src="%s"></script>`, JQueryScript))
	}

	for _, script := range page.clients {
		if tag := page.script(script); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (page *Page) script(script clientScript) string {

	attr := ""
	if script.typ != "" {
		attr = fmt.Sprintf(` type="text/%s"`, script.typ)
	}

	if script.url != "" {
		if script.typ == "" && runtime.Transformable(script.url) {
			attr = ` type="text/babel"`
		}
		return fmt.Sprintf(`<script%s src="%s"></script>`, attr, script.url)
	}

	file := page.client.File(script.path)
	if file == nil {
		return ""
	}

	text := file.Text()
	switch {
	case file.Transformable && (page.react || file.Transformed == ""):
		// transformed by babel in the browser
		text = file.Source
		if script.typ == "" {
			attr = ` type="text/babel"`
		}

	case page.engine.option.Minify:
		code, err := transform.MinifyJS(text, page.engine.option.Target)
		if err != nil {
			log.Warn("[Engine] %s %s", file.Path, err.Error())
			break
		}
		text = code
	}
	return fmt.Sprintf("<script%s>\n%s\n</script>", attr, strings.TrimSpace(text))
}

func (page *Page) style(file string, link string) string {
	source, err := page.engine.app.Read(file)
	if err != nil {
		log.Warn("[Engine] %s %s", page.path, err.Error())
		return link
	}

	css, err := transform.MinifyCSS(string(source))
	if err != nil {
		log.Warn("[Engine] %s %s", file, err.Error())
		css = string(source)
	}
	return "<style>\n" + strings.TrimSpace(css) + "\n</style>"
}

func appendOnce(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
