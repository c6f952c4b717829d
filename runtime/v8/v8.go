package v8

import (
	"fmt"

	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/runtime"
	"rogchap.com/v8go"
)

// NewFactory create a V8 context factory
func NewFactory(option Option) *Factory {
	option.Validate()
	return &Factory{option: option}
}

// New create a new isolate and context, then run the seed script once
func (factory *Factory) New(seed string) (runtime.Context, error) {
	iso := v8go.NewIsolate()
	ctx := v8go.NewContext(iso)
	context := &Context{iso: iso, ctx: ctx, timeout: factory.option.Timeout}

	if seed != "" {
		_, err := context.Execute(seed, factory.option.SeedOrigin)
		if err != nil {
			context.Dispose()
			return nil, fmt.Errorf("[V8] seed %s", err.Error())
		}
	}

	log.Trace("[V8] new context. seed:%d bytes", len(seed))
	return context, nil
}
