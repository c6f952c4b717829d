package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/go-errors/errors"
	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/bundle"
	"github.com/yaoapp/ssr/store"
)

// New create an orchestrator caching the outputs in the store
func New(kv store.Store, option Option) *Orchestrator {
	return &Orchestrator{store: kv, option: option}
}

// Key the cache key of the request
func (o *Orchestrator) Key(req Request) string {
	version := ""
	if req.Group != nil {
		version = req.Group.Version()
	}
	return o.key(req, version)
}

func (o *Orchestrator) key(req Request, version string) string {
	parts := []string{version}
	parts = append(parts, req.Deps...)
	parts = append(parts, req.Renderer.ID(), req.Name, bundle.Hash(req.Input))
	return bundle.Hash(strings.Join(parts, "|"))
}

// Render return the cached output, or render it when it is missing or the flag is set.
// The output is cached only if the context ran the bundle version the key was built from.
func (o *Orchestrator) Render(ctx context.Context, req Request) (string, error) {

	if req.Group == nil || req.Renderer == nil {
		return "", fmt.Errorf("[Render] %s %w: the group and the renderer are required", req.Name, runtime.ErrRender)
	}

	version := req.Group.Version()
	key := o.key(req, version)
	forced := req.Flag != nil && req.Flag.Take()
	if !forced {
		if output, has := o.store.Get(key); has {
			o.hits.Add(1)
			return output, nil
		}
	}

	// the coalesced callers share the render, one of them leaving must not fail the others
	detached := context.WithoutCancel(ctx)
	output, err, _ := o.flight.Do(key, func() (interface{}, error) {
		o.misses.Add(1)
		output, ran, err := o.render(detached, req)
		if err != nil {
			return "", err
		}

		if ran != version {
			log.Trace("[Render] %s the bundle changed while rendering, the output is not cached", req.Name)
			return output, nil
		}

		if err := o.store.Set(key, output, o.option.TTL); err != nil {
			log.Warn("[Render] %s cache: %s", req.Name, err.Error())
		}
		return output, nil
	})

	if err != nil {
		if forced {
			req.Flag.Set()
		}
		return "", err
	}
	return output.(string), nil
}

// Stats the orchestrator statistics
func (o *Orchestrator) Stats() Stats {
	return Stats{Hits: o.hits.Load(), Misses: o.misses.Load(), Size: o.store.Len()}
}

// Clear remove all the cached outputs
func (o *Orchestrator) Clear() {
	o.store.Clear()
}

func (o *Orchestrator) render(ctx context.Context, req Request) (output string, version string, err error) {

	lease, err := req.Group.Pool.Acquire(ctx)
	if err != nil {
		return "", "", err
	}
	defer lease.Release()
	version = lease.Version()

	defer func() {
		if r := recover(); r != nil {
			err = o.fail(req, errors.Wrap(r, 2))
		}
	}()

	output, err = req.Renderer.Render(lease, req.Name, req.Input)
	if err != nil {
		return "", version, o.fail(req, errors.Wrap(err, 1))
	}
	return output, version, nil
}

func (o *Orchestrator) fail(req Request, err *errors.Error) error {
	log.Error("[Render] %s %s: %s", req.Renderer.ID(), req.Name, err.Error())
	log.Debug("[Render] %s", err.ErrorStack())
	if o.option.Debug {
		color.Red("[Render] %s %s\n%s", req.Renderer.ID(), req.Name, err.ErrorStack())
	}
	return fmt.Errorf("[Render] %s %w: %s", req.Name, runtime.ErrRender, err.Error())
}
