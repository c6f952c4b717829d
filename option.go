package ssr

import (
	"fmt"
	"time"

	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/pool"
	"github.com/yaoapp/ssr/runtime/render"
	v8 "github.com/yaoapp/ssr/runtime/v8"
	"github.com/yaoapp/ssr/runtime/watch"
	"github.com/yaoapp/ssr/store"
)

// DefaultCacheTTL the render cache ttl of the badger and redis drivers, in seconds
const DefaultCacheTTL = 3600

// LoadOption read the option file (.json, .jsonc, .yaml or .yml)
func LoadOption(app application.Application, file string) (Option, error) {
	option := Option{}
	data, err := app.Read(file)
	if err != nil {
		return option, err
	}

	err = application.Parse(file, data, &option)
	if err != nil {
		return option, fmt.Errorf("[Engine] %s %s", file, err.Error())
	}

	return option, option.Validate()
}

// Validate set the defaults and check the values
func (option *Option) Validate() error {
	if option.MinPoolSize <= 0 {
		option.MinPoolSize = 1
	}

	if option.MaxPoolSize <= 0 {
		option.MaxPoolSize = 100
	}

	if option.MaxPoolSize < option.MinPoolSize {
		option.MaxPoolSize = option.MinPoolSize
	}

	if option.PoolIdleTTL <= 0 {
		option.PoolIdleTTL = 60000
	}

	if option.AcquireTimeout <= 0 {
		option.AcquireTimeout = 5000
	}

	if option.ScriptReloadIntervalMs <= 0 {
		option.ScriptReloadIntervalMs = 500
	}

	if option.MaxBackoff < option.ScriptReloadIntervalMs {
		option.MaxBackoff = 30000
		if option.MaxBackoff < option.ScriptReloadIntervalMs {
			option.MaxBackoff = option.ScriptReloadIntervalMs
		}
	}

	if option.SearchDepth <= 0 {
		option.SearchDepth = 3
	}

	if option.MinimumFileSizeBytes <= 0 {
		option.MinimumFileSizeBytes = 10
	}

	if option.TransformCacheSize <= 0 {
		option.TransformCacheSize = 512
	}

	if option.RootID == "" {
		option.RootID = render.DefaultRootID
	}

	if option.ExecTimeout <= 0 {
		option.ExecTimeout = 5000
	}

	switch option.Transformer {
	case "":
		option.Transformer = "esbuild"
	case "esbuild", "babel":
	default:
		return fmt.Errorf("[Engine] the transformer %s does not support", option.Transformer)
	}

	switch option.RenderCache.Driver {
	case "":
		option.RenderCache.Driver = "lru"
	case "lru", "badger", "redis":
	default:
		return fmt.Errorf("[Engine] the render cache driver %s does not support", option.RenderCache.Driver)
	}

	if option.RenderCache.Size <= 0 {
		option.RenderCache.Size = 1024
	}

	if option.RenderCache.TTL < 0 {
		return fmt.Errorf("[Engine] the render cache ttl %d is negative", option.RenderCache.TTL)
	}

	// badger and redis are not bounded by the size
	if option.RenderCache.TTL == 0 && option.RenderCache.Driver != "lru" {
		option.RenderCache.TTL = DefaultCacheTTL
	}

	return nil
}

// NewFactory create the V8 context factory of the option
func NewFactory(option Option) runtime.Factory {
	return v8.NewFactory(v8.Option{Timeout: ms(option.ExecTimeout)})
}

func (option Option) pool() pool.Option {
	return pool.Option{
		MinSize:        option.MinPoolSize,
		MaxSize:        option.MaxPoolSize,
		IdleTTL:        ms(option.PoolIdleTTL),
		AcquireTimeout: ms(option.AcquireTimeout),
	}
}

func (option Option) watch() watch.Option {
	return watch.Option{
		Interval:   ms(option.ScriptReloadIntervalMs),
		MaxBackoff: ms(option.MaxBackoff),
		Notify:     option.Notify,
	}
}

func (option Option) store() store.Option {
	return store.Option{
		Driver:   option.RenderCache.Driver,
		Size:     option.RenderCache.Size,
		TTL:      time.Duration(option.RenderCache.TTL) * time.Second,
		Path:     option.RenderCache.Path,
		Addr:     option.RenderCache.Addr,
		Password: option.RenderCache.Password,
		DB:       option.RenderCache.DB,
		Prefix:   option.RenderCache.Prefix,
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
