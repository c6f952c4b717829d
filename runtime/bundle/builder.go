package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/resolver"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/pool"
)

// NewBuilder create a bundle builder, the groups' pools create contexts with the factory
func NewBuilder(app application.Application, r *resolver.Resolver, factory runtime.Factory, option pool.Option) *Builder {
	return &Builder{
		app:      app,
		resolver: r,
		factory:  factory,
		option:   option,
		groups:   map[string]*Group{},
	}
}

// UseTransform set the transformer of the transformable files
func (builder *Builder) UseTransform(transformer runtime.Transformer) {
	builder.mu.Lock()
	defer builder.mu.Unlock()
	builder.transformer = transformer
}

// Group get or create the group. The contexts of a new group are seeded with
// the texts of the bases followed by its own text, and rebuilt when any of them changes.
func (builder *Builder) Group(name string, bases ...*Group) *Group {
	builder.mu.Lock()
	defer builder.mu.Unlock()

	if group, has := builder.groups[name]; has {
		return group
	}

	group := &Group{
		Name:   name,
		Bundle: New(name, builder.app, builder.load),
		bases:  bases,
		unhook: []func(){},
	}
	group.Pool = pool.New(name, builder.factory, group.Seed, builder.option)
	group.unhook = append(group.unhook, group.Bundle.OnRebuild(group.Pool.Rebuild))
	for _, base := range bases {
		group.unhook = append(group.unhook, base.Bundle.OnRebuild(group.Pool.Rebuild))
	}

	builder.groups[name] = group
	return group
}

// Bundle create a standalone bundle, its files are transformed like the group ones
func (builder *Builder) Bundle(name string) *Bundle {
	return New(name, builder.app, builder.load)
}

// Get the group
func (builder *Builder) Get(name string) (*Group, bool) {
	builder.mu.RLock()
	defer builder.mu.RUnlock()
	group, has := builder.groups[name]
	return group, has
}

// Remove close the group and forget it
func (builder *Builder) Remove(name string) {
	builder.mu.Lock()
	group, has := builder.groups[name]
	delete(builder.groups, name)
	builder.mu.Unlock()

	if has {
		group.Close()
	}
}

// Include resolve the script and append it to the group, a file already
// included is not read again
func (builder *Builder) Include(name string, script string, option IncludeOption) (*ScriptFile, error) {
	group := builder.Group(name)
	path, err := builder.resolver.Resolve(script)
	if err != nil {
		if option.Optional && errors.Is(err, runtime.ErrResolution) {
			log.Trace("[Bundle] %s the optional script %s was not found", name, script)
			return nil, nil
		}
		return nil, err
	}

	if group.Bundle.Has(path) {
		log.Trace("[Bundle] %s %s was already included", name, path)
		return group.Bundle.File(path), nil
	}

	file, err := builder.loadPath(script, path, option)
	if err != nil {
		return nil, err
	}

	if !group.Bundle.Add(file) {
		log.Trace("[Bundle] %s %s was already included", name, file.Path)
	}
	return file, nil
}

func (builder *Builder) loadPath(script string, path string, option IncludeOption) (*ScriptFile, error) {
	file := &ScriptFile{
		Path:          path,
		Transformable: option.Transform || runtime.Transformable(path),
	}

	err := builder.load(file)
	if err != nil {
		return nil, fmt.Errorf("[Bundle] %s %s", script, err.Error())
	}
	return file, nil
}

// Close all the groups
func (builder *Builder) Close() {
	builder.mu.Lock()
	groups := builder.groups
	builder.groups = map[string]*Group{}
	builder.mu.Unlock()

	for _, group := range groups {
		group.Close()
	}
}

// load read the file and transform it when needed, the raw source is kept if the transform fails
func (builder *Builder) load(file *ScriptFile) error {
	source, err := builder.app.Read(file.Path)
	if err != nil {
		return err
	}

	file.Source = string(source)
	file.Size = int64(len(source))
	file.Transformed = ""

	if !file.Transformable {
		return nil
	}

	builder.mu.RLock()
	transformer := builder.transformer
	builder.mu.RUnlock()
	if transformer == nil {
		log.Warn("[Bundle] %s needs a transform but no transformer is set", file.Path)
		return nil
	}

	code, err := transformer.Transform(file.Source, runtime.TransformOption{
		Loader:   runtime.Loader(file.Path),
		Filename: file.Path,
	})
	if err != nil {
		log.Warn("[Bundle] %s falls back to the raw source", file.Path)
		return nil
	}
	file.Transformed = code
	return nil
}

// Seed the text the group contexts start with, the texts of the bases
// followed by its own text, and the version of that text
func (group *Group) Seed() (string, string) {
	texts := []string{}
	hashes := []string{}
	for _, base := range group.bases {
		text, hash := base.Bundle.Snapshot()
		hashes = append(hashes, hash)
		if text != "" {
			texts = append(texts, text)
		}
	}
	text, hash := group.Bundle.Snapshot()
	hashes = append(hashes, hash)
	if text != "" {
		texts = append(texts, text)
	}
	return strings.Join(texts, Separator), strings.Join(hashes, ":")
}

// Version the version of the seed text, it changes when any bundle of the group changes
func (group *Group) Version() string {
	hashes := []string{}
	for _, base := range group.bases {
		hashes = append(hashes, base.Bundle.Hash())
	}
	hashes = append(hashes, group.Bundle.Hash())
	return strings.Join(hashes, ":")
}

// Hash the hash of the group own bundle
func (group *Group) Hash() string {
	return group.Bundle.Hash()
}

// Bases the base groups
func (group *Group) Bases() []*Group {
	return group.bases
}

// Close remove the hooks and close the pool
func (group *Group) Close() {
	for _, unhook := range group.unhook {
		unhook()
	}
	group.unhook = nil
	group.Pool.Close()
}
